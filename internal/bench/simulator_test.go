package bench

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Steps: 5, Verts: 100, MutateFraction: 0.1}},
		{name: "zero steps", cfg: Config{Verts: 100}, wantErr: true},
		{name: "zero verts", cfg: Config{Steps: 1}, wantErr: true},
		{name: "fraction above one", cfg: Config{Steps: 1, Verts: 1, MutateFraction: 1.5}, wantErr: true},
		{name: "negative fraction", cfg: Config{Steps: 1, Verts: 1, MutateFraction: -0.1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunDeduplicatesMostlyUnchangedSteps(t *testing.T) {
	report, err := Run(Config{
		Steps:          8,
		Verts:          512,
		MutateFraction: 0.05,
		Seed:           1,
	}, quietLogger())
	require.NoError(t, err)
	require.Len(t, report.Steps, 8)

	// Expanded size grows linearly with steps; compacted must not.
	first := report.Steps[0]
	last := report.Steps[len(report.Steps)-1]
	assert.Equal(t, first.ExpandedSize*8, last.ExpandedSize)
	assert.Less(t, last.CompactedSize, last.ExpandedSize/2,
		"small edits must deduplicate against the previous step")
	assert.Less(t, last.Ratio(), first.Ratio())
}

func TestRunBackgroundMatchesForeground(t *testing.T) {
	cfg := Config{Steps: 4, Verts: 128, MutateFraction: 0.25, Seed: 42}

	fg, err := Run(cfg, quietLogger())
	require.NoError(t, err)

	cfg.Background = true
	bg, err := Run(cfg, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, fg.Steps, bg.Steps)
	assert.Equal(t, fg.FinalCompacted, bg.FinalCompacted)
}

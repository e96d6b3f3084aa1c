// Package bench drives a synthetic edit-mode session against the undo
// store and reports how well consecutive snapshots deduplicate. Used by
// the undobench CLI to size chunk counts and verify dedup behavior on
// realistic workloads.
package bench

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/dkrider/meshundo/pkg/mesh"
	"github.com/dkrider/meshundo/pkg/meshundo"
	"github.com/dkrider/meshundo/pkg/undo"
)

// Config controls the simulated session.
type Config struct {
	// Steps is the number of undo steps to encode.
	Steps int

	// Verts sizes the simulated mesh.
	Verts int

	// MutateFraction is the share of the position buffer touched between
	// steps, in [0, 1]. Small values model typical editing, where one
	// region changes and the rest deduplicates.
	MutateFraction float64

	// ChunkCount and Background configure the undo service.
	ChunkCount int
	Background bool

	// Seed makes runs reproducible.
	Seed int64
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", c.Steps)
	}
	if c.Verts < 1 {
		return fmt.Errorf("verts must be at least 1, got %d", c.Verts)
	}
	if c.MutateFraction < 0 || c.MutateFraction > 1 {
		return fmt.Errorf("mutate fraction must be in [0, 1], got %g", c.MutateFraction)
	}
	return nil
}

// StepReport is the store usage after one encoded step.
type StepReport struct {
	Step          int
	UndoSize      int
	ExpandedSize  int
	CompactedSize int
}

// Ratio returns compacted size as a fraction of expanded size.
func (r StepReport) Ratio() float64 {
	if r.ExpandedSize == 0 {
		return 0
	}
	return float64(r.CompactedSize) / float64(r.ExpandedSize)
}

// Report is the outcome of a full simulated session.
type Report struct {
	Steps []StepReport

	// FinalExpanded and FinalCompacted are the store totals before the
	// steps were freed.
	FinalExpanded  int
	FinalCompacted int
}

// host is a minimal in-process stand-in for the application context.
type host struct {
	scene  mesh.Scene
	object *mesh.Object
}

func (h *host) EditObjects() []*mesh.Object {
	if h.object.Mesh.Edit == nil {
		return nil
	}
	return []*mesh.Object{h.object}
}

func (h *host) ActiveEditObject() *mesh.Object {
	if h.object.Mesh.Edit == nil {
		return nil
	}
	return h.object
}

func (h *host) RestoreEditObjects(objects []*mesh.Object) {
	for _, ob := range objects {
		if ob.Mesh.Edit == nil {
			ob.Mesh.Edit = ob.Mesh.NewEdit()
		}
	}
}

func (h *host) Activate(ob *mesh.Object)         {}
func (h *host) ToolSettings() *mesh.ToolSettings { return &h.scene.ToolSettings }
func (h *host) NotifyGeometryChanged()           {}
func (h *host) RequireFlush()                    {}

var _ undo.Context = (*host)(nil)

// Run simulates cfg.Steps editing steps and returns per-step store usage.
func Run(cfg Config, logger *slog.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	em := buildEditMesh(cfg.Verts, rng)
	m := mesh.NewMesh("bench")
	m.Edit = em
	h := &host{object: &mesh.Object{Name: "bench", Mesh: m}}

	svc := meshundo.NewService(meshundo.Options{
		ChunkCount: cfg.ChunkCount,
		Background: cfg.Background,
		Logger:     logger,
	})

	report := &Report{}
	var steps []*meshundo.Step

	for i := 0; i < cfg.Steps; i++ {
		if i > 0 {
			mutate(h.object.Mesh.Edit, cfg.MutateFraction, rng)
		}

		step := meshundo.NewStep(svc, fmt.Sprintf("step %03d", i))
		if !step.Encode(h) {
			return nil, fmt.Errorf("encode step %d failed", i)
		}
		steps = append(steps, step)

		stats := svc.Stats()
		report.Steps = append(report.Steps, StepReport{
			Step:          i,
			UndoSize:      step.DataSize,
			ExpandedSize:  stats.ExpandedSize,
			CompactedSize: stats.CompactedSize,
		})
	}

	final := svc.Stats()
	report.FinalExpanded = final.ExpandedSize
	report.FinalCompacted = final.CompactedSize

	// Walk the whole history once to prove decode still round-trips.
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i].Decode(h, undo.DirectionUndo, i == 0)
	}

	for _, step := range steps {
		step.Free()
	}
	if svc.Users() != 0 {
		return nil, fmt.Errorf("store still has %d users after freeing all steps", svc.Users())
	}

	return report, nil
}

// buildEditMesh creates a working copy with the layer mix of a typical
// textured mesh.
func buildEditMesh(verts int, rng *rand.Rand) *mesh.EditMesh {
	loops := verts * 2
	em := &mesh.EditMesh{
		TotVert:    verts,
		TotLoop:    loops,
		SelectMode: mesh.SelectVert,
	}
	em.Verts.AddLayer(mesh.LayerPosition, "position", randomBytes(verts*12, rng))
	em.Loops.AddLayer(mesh.LayerUV, "uv_map", randomBytes(loops*8, rng))
	em.Loops.AddLayer(mesh.LayerColor, "color", randomBytes(loops*4, rng))
	return em
}

// mutate rewrites a random contiguous region of the position buffer.
func mutate(em *mesh.EditMesh, fraction float64, rng *rand.Rand) {
	data := em.Verts.Layers[0].Data
	n := int(float64(len(data)) * fraction)
	if n == 0 {
		n = 1
	}
	start := 0
	if len(data) > n {
		start = rng.Intn(len(data) - n)
	}
	for i := start; i < start+n && i < len(data); i++ {
		data[i] = byte(rng.Intn(256))
	}
}

func randomBytes(n int, rng *rand.Rand) []byte {
	buf := make([]byte, n)
	rng.Read(buf)
	return buf
}

// Config loading for the undobench CLI.
package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config keys, overridable by flags.
const (
	cfgKeySteps          = "steps"
	cfgKeyVerts          = "verts"
	cfgKeyMutateFraction = "mutate_fraction"
	cfgKeyChunkCount     = "chunk_count"
	cfgKeyBackground     = "background"
	cfgKeySeed           = "seed"
)

// loadConfig reads the optional YAML config file. A missing file is not an
// error; defaults and flags cover everything.
func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeySteps, 32)
	v.SetDefault(cfgKeyVerts, 4096)
	v.SetDefault(cfgKeyMutateFraction, 0.05)
	v.SetDefault(cfgKeyChunkCount, 0)
	v.SetDefault(cfgKeyBackground, false)
	v.SetDefault(cfgKeySeed, 1)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("undobench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && configPath == "" {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// Package settings shows and edits the newman configuration file.
package settings

//go:generate go run github.com/scbrown/newman/cmd/newman-gen

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/scbrown/newman/internal/config"
	"github.com/scbrown/newman/internal/table"
)

// Stdout receives output.
var Stdout io.Writer = os.Stdout

// ConfigPath is the file edited; "" is the default location.
var ConfigPath string

func path() string {
	if ConfigPath != "" {
		return ConfigPath
	}
	return config.Path()
}

// Show prints every setting.
//
//newman:default json=false
func Show(json bool) error {
	cfg, err := config.LoadFrom(path())
	if err != nil {
		return err
	}
	if json {
		return encode(cfg)
	}
	tbl := table.New(Stdout, "KEY", "VALUE")
	for _, key := range config.ValidKeys() {
		val, _ := cfg.Get(key)
		if val == "" {
			val = "(not set)"
		}
		tbl.Row(key, val)
	}
	return tbl.Flush()
}

func encode(cfg *config.Config) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// Get prints the value of key.
func Get(key string) error {
	cfg, err := config.LoadFrom(path())
	if err != nil {
		return err
	}
	val, err := cfg.Get(key)
	if err != nil {
		return err
	}
	if val != "" {
		fmt.Fprintln(Stdout, val)
	}
	return nil
}

// Set stores value under key.
func Set(key, value string) error {
	cfg, err := config.LoadFrom(path())
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.SaveTo(path()); err != nil {
		return err
	}
	fmt.Fprintf(Stdout, "%s = %s\n", key, value)
	return nil
}

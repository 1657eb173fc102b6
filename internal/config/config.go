// Package config loads the driver's birfacts.toml project file, the way
// the surrounding toolchain resolves its own manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "birfacts.toml"

const noManifestMessage = "no birfacts.toml found\nplease pass --out/--cache explicitly, e.g.:\n  birfacts collect --fixture shared-borrow --out facts/"

// Config is the [collect] section of a project manifest: where collected
// relations land and where the disk cache of prior runs is kept.
type Config struct {
	Collect CollectConfig `toml:"collect"`
}

// CollectConfig controls one collection run.
type CollectConfig struct {
	OutDir   string `toml:"out_dir"`
	CacheDir string `toml:"cache_dir"`
	// TraceLevel names an internal/trace.Level: off|error|phase|detail|debug.
	TraceLevel string `toml:"trace_level"`
}

// Default returns the configuration used when no manifest is found.
func Default() Config {
	return Config{Collect: CollectConfig{
		OutDir:     "facts",
		CacheDir:   filepath.Join(os.TempDir(), "birfacts-cache"),
		TraceLevel: "off",
	}}
}

// Find walks up from startDir looking for birfacts.toml, the way the
// surrounding toolchain resolves its own project manifest.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes birfacts.toml starting from startDir, falling back
// to Default() (with a note, not an error) if none exists.
func Load(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if strings.TrimSpace(cfg.Collect.OutDir) == "" {
		cfg.Collect.OutDir = Default().Collect.OutDir
	}
	if strings.TrimSpace(cfg.Collect.CacheDir) == "" {
		cfg.Collect.CacheDir = Default().Collect.CacheDir
	}
	if strings.TrimSpace(cfg.Collect.TraceLevel) == "" {
		cfg.Collect.TraceLevel = "off"
	}
	return cfg, path, nil
}

// NoManifestMessage is surfaced by the CLI when Find finds nothing and the
// caller passed none of the flags that would make a manifest optional.
func NoManifestMessage() string { return noManifestMessage }

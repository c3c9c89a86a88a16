// Package config reads the project configuration file, sifon.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/izreit/sifon/pkg/compiler"
	"github.com/izreit/sifon/pkg/logutil"
)

var logger = logutil.GetLogger("[config] ")

// FileName is the name of the configuration file.
const FileName = "sifon.yaml"

// Config is the project configuration.
type Config struct {
	// StdMacros registers the built-in macros.
	StdMacros bool `yaml:"std-macros"`
	// Reduce runs the constant-folding pass.
	Reduce bool `yaml:"reduce"`
	// Cache is the path of the compile cache database. Empty disables the
	// cache. A relative path is relative to the directory of the file.
	Cache string `yaml:"cache"`
	// OutDir is where compiled files are written. Empty means next to the
	// input. A relative path is relative to the directory of the file.
	OutDir string `yaml:"out-dir"`
	// Color is one of "auto", "always" and "never".
	Color string `yaml:"color"`

	// Path is the file the configuration was read from; empty for the
	// default configuration.
	Path string `yaml:"-"`
}

// Default returns the configuration used without a configuration file.
func Default() *Config {
	return &Config{StdMacros: true, Color: "auto"}
}

// Options returns the compiler options c asks for.
func (c *Config) Options() compiler.Options {
	return compiler.Options{Reduce: c.Reduce, NoStdMacros: !c.StdMacros}
}

// Load finds the nearest sifon.yaml in dir or one of its ancestors and
// reads it. Without one, it returns Default().
func Load(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		cfg, err := Read(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			logger.Println("no", FileName, "found, using defaults")
			return Default(), nil
		}
		dir = parent
	}
}

// Read reads a configuration file. Keys missing from the file keep their
// default values; unknown keys are an error.
func Read(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	base := filepath.Dir(path)
	cfg.Cache = resolve(base, cfg.Cache)
	cfg.OutDir = resolve(base, cfg.OutDir)
	logger.Println("read", path)
	return cfg, nil
}

// Decode decodes a configuration from r.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values of cfg.
func (cfg *Config) Validate() error {
	switch cfg.Color {
	case "auto", "always", "never":
		return nil
	}
	return fmt.Errorf("color must be auto, always or never, got %q", cfg.Color)
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

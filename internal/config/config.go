// Package config loads run settings from defaults and an optional
// .bundledoc.yaml file.
package config

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/bundledoc/bundledoc/internal/logging"
	"github.com/bundledoc/bundledoc/internal/output"
)

const FileName = ".bundledoc.yaml"

type Output struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Layout string `yaml:"layout"`
	Indent bool   `yaml:"indent"`
}

type Log struct {
	Level string `yaml:"level"`
	Color bool   `yaml:"color"`
}

type Config struct {
	Output Output `yaml:"output"`
	// Workers bounds parallel encoding; 0 means GOMAXPROCS.
	Workers int  `yaml:"workers"`
	Strict  bool `yaml:"strict"`
	Log     Log  `yaml:"log"`

	// Path of the file the settings were read from, empty for defaults only.
	Path string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Output: Output{
			Dir:    "out",
			Format: string(output.FormatJSON),
			Layout: string(output.LayoutSplit),
		},
		Strict: true,
		Log: Log{
			Level: "info",
			Color: true,
		},
	}
}

// Load returns the defaults overlaid with the config file. An explicit path
// must exist; otherwise FileName in dir is read when present.
func Load(dir, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Errorf("read config %s: %w", path, err)
	}

	if err := decode(bytes.NewReader(data), cfg); err != nil {
		return nil, errors.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.WithStack(err)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := output.ParseLayout(c.Output.Layout); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	return nil
}

type contextKey struct{}

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext returns the config stored by WithContext, or the defaults.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(contextKey{}).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return Default()
}

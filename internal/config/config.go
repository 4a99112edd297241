// Package config loads the optional .hicstuff.yaml or .hicstuff.toml settings file.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const appName = "hicstuff"

// FileNames are the config file names searched, in order, in each directory.
var FileNames = []string{".hicstuff.yaml", ".hicstuff.yml", ".hicstuff.toml"}

var (
	ErrUnsupportedFormat = errors.New("unsupported config format, expected yaml or toml")
	ErrInvalidConfig     = errors.New("invalid config")
)

// Filter holds the threshold estimation settings.
type Filter struct {
	MaxSites   int `yaml:"max_sites"   toml:"max_sites"`
	SampleSize int `yaml:"sample_size" toml:"sample_size"`
}

// View holds the heatmap settings.
type View struct {
	DPIScale             int     `yaml:"dpi_scale"             toml:"dpi_scale"`
	Colormap             string  `yaml:"colormap"              toml:"colormap"`
	SaturationPercentile float64 `yaml:"saturation_percentile" toml:"saturation_percentile"`
}

// Iteralign holds the iterative alignment settings.
type Iteralign struct {
	MinQuality int    `yaml:"min_quality" toml:"min_quality"`
	Step       int    `yaml:"step"        toml:"step"`
	Aligner    string `yaml:"aligner"     toml:"aligner"`
}

// Config is the whole settings file.
type Config struct {
	LogLevel  string    `yaml:"log_level" toml:"log_level"`
	NoColor   bool      `yaml:"no_color"  toml:"no_color"`
	Threads   int       `yaml:"threads"   toml:"threads"`
	TempDir   string    `yaml:"tempdir"   toml:"tempdir"`
	Filter    Filter    `yaml:"filter"    toml:"filter"`
	View      View      `yaml:"view"      toml:"view"`
	Iteralign Iteralign `yaml:"iteralign" toml:"iteralign"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Threads:  1,
		TempDir:  ".",
		Filter: Filter{
			MaxSites:   500,
			SampleSize: 999999,
		},
		View: View{
			DPIScale:             1,
			Colormap:             "Reds",
			SaturationPercentile: 99,
		},
		Iteralign: Iteralign{
			MinQuality: 30,
			Step:       10,
			Aligner:    "bowtie2",
		},
	}
}

// Find returns the first config file found in workDir, then in configHome/hicstuff.
// configHome defaults to the user config directory. It returns "" when there is none.
func Find(workDir, configHome string) string {
	if configHome == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			configHome = dir
		}
	}

	dirs := []string{workDir}
	if configHome != "" && configHome != "/" {
		dirs = append(dirs, filepath.Join(configHome, appName))
	}

	for _, dir := range dirs {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}

	return ""
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse config %s", path)
	}

	cfg.Path = path

	return cfg, cfg.Validate()
}

// Discover finds and loads the config for workDir.
func Discover(workDir string) (*Config, error) {
	return Load(Find(workDir, os.Getenv("XDG_CONFIG_HOME")))
}

// Validate checks the values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	switch {
	case c.Threads < 1:
		return errors.Wrapf(ErrInvalidConfig, "threads must be at least 1, got %d", c.Threads)
	case c.Filter.MaxSites < 1:
		return errors.Wrapf(ErrInvalidConfig, "filter.max_sites must be at least 1, got %d", c.Filter.MaxSites)
	case c.Filter.SampleSize < 1:
		return errors.Wrapf(ErrInvalidConfig, "filter.sample_size must be at least 1, got %d", c.Filter.SampleSize)
	case c.View.DPIScale < 1:
		return errors.Wrapf(ErrInvalidConfig, "view.dpi_scale must be at least 1, got %d", c.View.DPIScale)
	case c.View.SaturationPercentile <= 0 || c.View.SaturationPercentile > 100:
		return errors.Wrapf(ErrInvalidConfig, "view.saturation_percentile must be in (0, 100], got %g", c.View.SaturationPercentile)
	case c.Iteralign.Step < 1:
		return errors.Wrapf(ErrInvalidConfig, "iteralign.step must be at least 1, got %d", c.Iteralign.Step)
	}

	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return level, errors.Wrapf(ErrInvalidConfig, "log_level %q", c.LogLevel)
	}

	return level, nil
}

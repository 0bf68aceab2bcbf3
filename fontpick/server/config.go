package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	flag "github.com/spf13/pflag"
	"github.com/stdiopt/gowasm-fontpick/fontpick/poster"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Config holds the server settings.
type Config struct {
	Port    int          `yaml:"port"` // first port tried, the next ones if busy
	Dir     string       `yaml:"dir"`  // static files: index.html, wasm_exec.js, main.wasm
	Verbose bool         `yaml:"verbose"`
	Poster  PosterConfig `yaml:"poster"`
}

// PosterConfig sets the size of the preview cards.
type PosterConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Port: 8080,
		Dir:  ".",
		Poster: PosterConfig{
			Width:  poster.DefaultWidth,
			Height: poster.DefaultHeight,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. Unknown fields
// are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if c.Dir == "" {
		return fmt.Errorf("%w: empty dir", ErrInvalidConfig)
	}
	if c.Poster.Width <= 0 || c.Poster.Height <= 0 {
		return fmt.Errorf("%w: poster size %dx%d", ErrInvalidConfig, c.Poster.Width, c.Poster.Height)
	}
	return nil
}

type flags struct {
	config  string
	port    int
	dir     string
	verbose bool

	set *flag.FlagSet
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("fontpick-server", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "YAML config file")
	fs.IntVarP(&f.port, "port", "p", 8080, "first port to listen on")
	fs.StringVarP(&f.dir, "dir", "d", ".", "directory with the client files")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.set = fs
	return f, nil
}

// apply copies the flags given on the command line over cfg.
func (f *flags) apply(cfg *Config) {
	if f.set.Changed("port") {
		cfg.Port = f.port
	}
	if f.set.Changed("dir") {
		cfg.Dir = f.dir
	}
	if f.set.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
}

// resolveConfig builds the effective config from the command line.
func resolveConfig(args []string) (*Config, error) {
	f, err := parseFlags(args)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if f.config != "" {
		if cfg, err = LoadConfig(f.config); err != nil {
			return nil, err
		}
	}
	f.apply(cfg)
	return cfg, cfg.Validate()
}

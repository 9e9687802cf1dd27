// Package config loads session settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of a session and its driver
type Config struct {
	WordSize    int    `yaml:"word_size"`    // 32 or 64; 0 selects the host
	GCInterval  int    `yaml:"gc_interval"`  // allocations between collections; 0 never collects
	TraceLevel  string `yaml:"trace_level"`  // error, info or debug
	HistoryFile string `yaml:"history_file"` // REPL history; empty disables it
}

// Default returns the settings used when no file is given
func Default() Config {
	return Config{
		WordSize:   strconv.IntSize,
		TraceLevel: "error",
	}
}

// Load reads path over the defaults
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(src)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(src []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	switch c.WordSize {
	case 0, 32, 64:
	default:
		return fmt.Errorf("word_size must be 32 or 64, got %d", c.WordSize)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("gc_interval must not be negative, got %d", c.GCInterval)
	}
	switch c.TraceLevel {
	case "", "error", "info", "debug":
	default:
		return fmt.Errorf("unknown trace_level %q", c.TraceLevel)
	}
	return nil
}

// Marshal encodes c as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

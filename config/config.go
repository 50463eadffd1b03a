// Package config loads mailscrub configuration: built-in defaults from an
// embedded YAML document, optionally overlaid with a user supplied file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/css"
	"github.com/gaurav-prasanna/mailscrub/core/send"
)

//go:embed config.yaml
var DefaultConfig []byte

// Version is the only configuration schema version understood.
const Version = 1

type (
	CSSConfig struct {
		ExtraEditorSelectors []string `yaml:"extra_editor_selectors"`
	}

	Config struct {
		Version  int           `yaml:"version"`
		Pipeline core.Options  `yaml:"pipeline"`
		CSS      CSSConfig     `yaml:"css"`
		Send     send.Config   `yaml:"send"`
		Logging  LoggingConfig `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// Only fields we defined are accepted, so yaml.Unmarshal will not do.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration returns the defaults overlaid with the file at path.
// An empty path yields the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(DefaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if len(path) == 0 {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg, err = unmarshalConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to process config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var err error
	if c.Version != Version {
		err = multierr.Append(err, fmt.Errorf("unsupported version %d, expected %d", c.Version, Version))
	}
	if c.Pipeline.Width <= 0 {
		err = multierr.Append(err, fmt.Errorf("pipeline.width must be positive, got %d", c.Pipeline.Width))
	}
	switch c.Logging.Level {
	case LevelNone, LevelNormal, LevelDebug:
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level must be one of none, normal, debug, got %q", c.Logging.Level))
	}
	if _, cerr := c.editorPatterns(); cerr != nil {
		err = multierr.Append(err, cerr)
	}
	return err
}

func (c *Config) editorPatterns() ([]*regexp.Regexp, error) {
	var (
		out []*regexp.Regexp
		err error
	)
	for _, expr := range c.CSS.ExtraEditorSelectors {
		re, cerr := regexp.Compile(expr)
		if cerr != nil {
			err = multierr.Append(err, fmt.Errorf("css.extra_editor_selectors: %w", cerr))
			continue
		}
		out = append(out, re)
	}
	return out, err
}

// Classifier returns the default selector classifier extended with the
// configured editor selectors.
func (c *Config) Classifier() (*css.Classifier, error) {
	patterns, err := c.editorPatterns()
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return css.DefaultClassifier(), nil
	}
	return css.DefaultClassifier().WithEditorPatterns(patterns), nil
}

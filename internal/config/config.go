// Package config loads the optional skinshortcuts.yaml build configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the skin directory when no explicit
// config path is given.
const DefaultFileName = "skinshortcuts.yaml"

// BuildConfig controls one build run. Every field has a usable default, so
// the file is optional.
type BuildConfig struct {
	SkinDir    string `yaml:"skinDir"`
	OutputPath string `yaml:"outputPath"`
	Container  string `yaml:"container"`

	TemplatesFile  string `yaml:"templatesFile"`
	MenusFile      string `yaml:"menusFile"`
	PropertiesFile string `yaml:"propertiesFile"`
}

// Default returns a config rooted at the given skin directory.
func Default(skinDir string) *BuildConfig {
	cfg := &BuildConfig{SkinDir: skinDir}
	cfg.applyDefaults()
	return cfg
}

// Load reads a build config from disk. A missing file yields the defaults.
func Load(path, skinDir string) (*BuildConfig, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(skinDir, DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(skinDir), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.SkinDir == "" {
		cfg.SkinDir = skinDir
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func parseConfig(data []byte) (*BuildConfig, error) {
	var cfg BuildConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *BuildConfig) applyDefaults() {
	if c.Container == "" {
		c.Container = "9000"
	}
	if c.TemplatesFile == "" {
		c.TemplatesFile = filepath.Join(c.SkinDir, "templates.xml")
	}
	if c.MenusFile == "" {
		c.MenusFile = filepath.Join(c.SkinDir, "menus.xml")
	}
	if c.PropertiesFile == "" {
		c.PropertiesFile = filepath.Join(c.SkinDir, "properties.xml")
	}
	if c.OutputPath == "" {
		c.OutputPath = filepath.Join(c.SkinDir, "includes.xml")
	}
}

// Validate rejects configs that cannot drive a build.
func (c *BuildConfig) Validate() error {
	if strings.TrimSpace(c.SkinDir) == "" {
		return fmt.Errorf("skin directory is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}

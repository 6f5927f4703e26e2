package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stevensona/shader-toy-sub000/pkg/buffers"
	"github.com/stevensona/shader-toy-sub000/pkg/document"

	"gopkg.in/yaml.v2"
)

// configFileName is looked up from the shader's directory upward
const configFileName = ".shadertoy.yaml"

// Config represents the structure of a .shadertoy.yaml configuration file
type Config struct {
	StrictCompatibility     bool              `yaml:"strictCompatibility"`
	EnableAudioInput        bool              `yaml:"enableAudioInput"`
	WarnOnUndefinedChannels bool              `yaml:"warnOnUndefinedChannels"`
	PreambleLines           int               `yaml:"preambleLines"`
	PathMappings            map[string]string `yaml:"pathMappings,omitempty"`

	path string // File the config was read from, empty for defaults
}

// DefaultConfig returns the settings used without a configuration file
func DefaultConfig() *Config {
	return &Config{
		WarnOnUndefinedChannels: true,
	}
}

// Path returns the file the config was loaded from
func (c *Config) Path() string {
	return c.path
}

// Options converts the config into resolver options
func (c *Config) Options() buffers.Options {
	return buffers.Options{
		StrictCompatibility:     c.StrictCompatibility,
		EnableAudioInput:        c.EnableAudioInput,
		WarnOnUndefinedChannels: c.WarnOnUndefinedChannels,
		PreambleLines:           c.PreambleLines,
	}
}

// Apply installs the path mappings on a workspace
func (c *Config) Apply(ws *document.Workspace) {
	for prefix, target := range c.PathMappings {
		if !filepath.IsAbs(target) && c.path != "" {
			dir := strings.HasSuffix(target, "/")
			target = filepath.Join(filepath.Dir(c.path), target)
			if dir {
				target += string(filepath.Separator)
			}
		}
		ws.SetMapping(prefix, target)
	}
}

// loadConfig reads the config at explicit, or the nearest .shadertoy.yaml
// above start. A missing file yields the defaults.
func loadConfig(explicit, start string) (*Config, error) {
	path := explicit
	if path == "" {
		path = findConfig(start)
	}
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	config.path = path
	return config, nil
}

// findConfig walks from start up to the filesystem root looking for a
// configuration file
func findConfig(start string) string {
	dir := start
	if info, err := os.Stat(start); err != nil || !info.IsDir() {
		dir = filepath.Dir(start)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// getEnvOrDefault gets an environment variable value or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

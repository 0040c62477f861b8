package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"template_url": "https://example.com/template.html",
		"project_name": "Orbit",
		"project_description": "A web scheduling app",
		"port": 8080,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.com/template.html", cfg.TemplateURL)
	assert.Equal(t, "Orbit", cfg.ProjectName)
	assert.Equal(t, "A web scheduling app", cfg.ProjectDescription)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_MutuallyExclusive(t *testing.T) {
	cfg := &Config{
		Template:    "template.html",
		TemplateURL: "https://example.com/template.html",
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{Port: -1}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "port")

	cfg = &Config{Port: 70000}
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidate_MissingTemplateFile(t *testing.T) {
	cfg := &Config{Template: "/nonexistent/template.html"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "template file not found")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		ProjectName: "Orbit",
		Port:        8080,
	}

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		ProjectName: "Default Project",
		APIKey:      "default-key",
		Template:    "default.html",
		Port:        9090,
	}

	partial := Config{
		ProjectName: "Custom Project",
		Output:      "out.html",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "Custom Project", merged.ProjectName)
	assert.Equal(t, "out.html", merged.Output)

	// Default values should fill in empty fields
	assert.Equal(t, "default-key", merged.APIKey)
	assert.Equal(t, "default.html", merged.Template)
	assert.Equal(t, 9090, merged.Port)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		ProjectName: "Test",
		Output:      "out.html",
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "Test", merged.ProjectName)
	assert.Equal(t, "out.html", merged.Output)
}

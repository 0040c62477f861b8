// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Template    string `json:"template,omitempty"`     // Path to HTML template file
	TemplateURL string `json:"template_url,omitempty"` // URL to fetch the HTML template from

	// Project context
	ProjectName        string `json:"project_name,omitempty"`        // Name of the target project
	ProjectDescription string `json:"project_description,omitempty"` // Short project description
	Prompt             string `json:"prompt,omitempty"`              // Freeform generation prompt

	// Output
	Output    string `json:"output,omitempty"`     // Path to write the generated HTML
	PDFOutput string `json:"pdf_output,omitempty"` // Optional path to also render a PDF

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Model       string `json:"model,omitempty"`        // Override for the generation model name
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Server
	Port      int    `json:"port,omitempty"`       // HTTP listen port
	JWTSecret string `json:"jwt_secret,omitempty"` // Secret for signing auth tokens
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Template != "" && c.TemplateURL != "" {
		return fmt.Errorf("config error: 'template' and 'template_url' are mutually exclusive")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	// Validate file paths exist (if specified)
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.TemplateURL == "" {
		result.TemplateURL = defaults.TemplateURL
	}
	if result.ProjectName == "" {
		result.ProjectName = defaults.ProjectName
	}
	if result.ProjectDescription == "" {
		result.ProjectDescription = defaults.ProjectDescription
	}
	if result.Prompt == "" {
		result.Prompt = defaults.Prompt
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.PDFOutput == "" {
		result.PDFOutput = defaults.PDFOutput
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

package types

// UserInput is the raw, caller-supplied request for a generation run.
// Fields carry validation tags checked by the ingestion package before a
// ProjectContext is built from them.
type UserInput struct {
	ProjectName        string         `json:"project_name" validate:"required,min=1,max=200"`
	ProjectDescription string         `json:"project_description" validate:"required,min=1,max=1000"`
	PromptText         string         `json:"prompt_text" validate:"required,min=1,max=10000"`
	JSONOverrides      map[string]any `json:"json_overrides,omitempty"`
	StrictVars         map[string]any `json:"strict_vars,omitempty"`
}

// ProjectContext is the sanitized, validated context threaded through
// analysis and generation. Built once per request; treated as read-only
// by everything downstream.
type ProjectContext struct {
	ProjectName        string `json:"project_name"`
	ProjectDescription string `json:"project_description"`
	PromptText         string `json:"prompt_text"`
	// JSONOverrides carries explicit caller overrides, or a JSON object
	// recovered from the tail of the freeform prompt.
	JSONOverrides map[string]any `json:"json_overrides,omitempty"`
	// StrictVars are non-negotiable substitutions supplied by the caller.
	StrictVars map[string]any `json:"strict_vars,omitempty"`
}

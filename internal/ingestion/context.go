// Package ingestion turns raw user input into the validated ProjectContext
// that drives analysis and generation.
package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/document-generator/internal/types"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	jsonBlockRE  = regexp.MustCompile(`\{[\s\S]*?\}`)

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// ValidateInput checks the raw caller input against its field constraints.
func ValidateInput(in types.UserInput) error {
	if err := validate.Struct(in); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("invalid input: field %s failed %s constraint", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// BuildContext assembles a ProjectContext from user input. Text fields are
// sanitized; overrides come from the explicit field when present, otherwise
// from a best-effort scan of the freeform prompt. Building never fails.
func BuildContext(in types.UserInput) types.ProjectContext {
	ctx := types.ProjectContext{
		ProjectName:        sanitize(in.ProjectName),
		ProjectDescription: sanitize(in.ProjectDescription),
		PromptText:         sanitize(in.PromptText),
		JSONOverrides:      in.JSONOverrides,
		StrictVars:         in.StrictVars,
	}
	if len(ctx.JSONOverrides) == 0 {
		ctx.JSONOverrides = extractJSONOverrides(ctx.PromptText)
	}
	return ctx
}

// ValidateContext reports the first missing required field of a built
// context, or nil. Override contents are deliberately not inspected here.
func ValidateContext(ctx types.ProjectContext) error {
	switch {
	case ctx.ProjectName == "":
		return errors.New("Project name is required.")
	case ctx.ProjectDescription == "":
		return errors.New("Project description is required.")
	case ctx.PromptText == "":
		return errors.New("Prompt text is required.")
	}
	return nil
}

// sanitize trims and collapses internal whitespace runs to single spaces.
func sanitize(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// extractJSONOverrides scans the prompt for {...} blocks and returns the
// last one that parses as a JSON object. Prompts commonly end with an
// override block, so candidates are tried back to front. Malformed
// candidates are skipped silently.
func extractJSONOverrides(prompt string) map[string]any {
	matches := jsonBlockRE.FindAllString(prompt, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		var overrides map[string]any
		if err := json.Unmarshal([]byte(matches[i]), &overrides); err == nil {
			return overrides
		}
	}
	return nil
}

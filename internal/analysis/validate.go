package analysis

import (
	"errors"
	"strings"

	"github.com/jonathan/document-generator/internal/types"
)

// Content-relevance rejection reasons.
var (
	ErrMissingProjectName  = errors.New("generated content does not include project name")
	ErrCopiedReferenceData = errors.New("generated content appears to copy reference data")
)

// ValidateGeneratedContent checks that generated HTML is project-relevant
// rather than a copy of the reference template. It rejects output that
// never mentions the project name, and output whose tables keep the
// original headers while reproducing more than half of the original data
// rows verbatim.
func ValidateGeneratedContent(originalHTML, generatedHTML string, ctx types.ProjectContext) error {
	if !strings.Contains(strings.ToLower(generatedHTML), strings.ToLower(ctx.ProjectName)) {
		return ErrMissingProjectName
	}

	originalTables := ExtractTableStructure(originalHTML)
	generatedTables := ExtractTableStructure(generatedHTML)

	pairs := len(originalTables)
	if len(generatedTables) < pairs {
		pairs = len(generatedTables)
	}
	for i := 0; i < pairs; i++ {
		orig, gen := originalTables[i], generatedTables[i]
		if !equalStrings(orig.Headers, gen.Headers) {
			continue
		}
		identical := 0
		for _, row := range orig.Rows {
			if containsRow(gen.Rows, row) {
				identical++
			}
		}
		if float64(identical) > float64(len(orig.Rows))*0.5 {
			return ErrCopiedReferenceData
		}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsRow(rows [][]string, row []string) bool {
	for _, candidate := range rows {
		if equalStrings(candidate, row) {
			return true
		}
	}
	return false
}

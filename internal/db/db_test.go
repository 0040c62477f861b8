package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactStepConstants(t *testing.T) {
	// Verify step constants are defined
	steps := []string{
		StepTemplateHTML,
		StepProjectContext,
		StepSections,
		StepProjectMetrics,
		StepGeneratedSections,
		StepFinalHTML,
		StepRunResult,
	}

	for _, step := range steps {
		assert.NotEmpty(t, step, "step constant should not be empty")
	}
}

func TestRunType(t *testing.T) {
	// Verify Run struct can be instantiated
	run := Run{
		ProjectName:    "Orbit",
		TemplateSource: "templates/report.html",
		Status:         RunStatusRunning,
	}

	assert.Equal(t, "Orbit", run.ProjectName)
	assert.Equal(t, "templates/report.html", run.TemplateSource)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
	assert.Zero(t, run.SectionsFailed)
}

func TestRunStatusConstants(t *testing.T) {
	// Completed statuses must match the workflow's GenerationStatus strings
	// so run rows can be filtered on the result status directly.
	assert.Equal(t, "completed", RunStatusCompleted)
	assert.Equal(t, "partial", RunStatusPartial)
	assert.Equal(t, "failed", RunStatusFailed)
}

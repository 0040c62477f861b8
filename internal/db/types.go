package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a generation run record
type Run struct {
	ID             uuid.UUID  `json:"id"`
	ProjectName    string     `json:"project_name"`
	TemplateSource string     `json:"template_source"`
	Status         string     `json:"status"`
	SectionsTotal  int        `json:"sections_total"`
	SectionsFailed int        `json:"sections_failed"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Run status values. The completed statuses mirror the workflow's
// GenerationStatus strings so a run row can be filtered on them directly.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// ArtifactStep constants for known artifact types
const (
	StepTemplateHTML      = "template_html"
	StepProjectContext    = "project_context"
	StepSections          = "sections"
	StepProjectMetrics    = "project_metrics"
	StepGeneratedSections = "generated_sections"
	StepFinalHTML         = "final_html"
	StepRunResult         = "run_result"
)

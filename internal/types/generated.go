package types

// ValidationStatus is the outcome of content validation for a generated section.
type ValidationStatus string

// Validation statuses.
const (
	ValidationPending ValidationStatus = "pending"
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
	ValidationWarning ValidationStatus = "warning"
)

// GenerationStatus is the overall outcome of a generation run.
type GenerationStatus string

// Generation statuses.
const (
	GenerationPending    GenerationStatus = "pending"
	GenerationInProgress GenerationStatus = "in_progress"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
	GenerationPartial    GenerationStatus = "partial"
)

// GeneratedSection is the result of regenerating one Section. It is
// immutable once returned; a retried attempt produces a new instance.
type GeneratedSection struct {
	// SectionID references the source Section by id.
	SectionID string `json:"section_id"`
	// OriginalHTML is a copy of the source fragment, kept for auditing.
	OriginalHTML string `json:"original_html"`
	// GeneratedHTML is the post-processed model output; empty when
	// generation failed entirely.
	GeneratedHTML string `json:"generated_html"`
	// GenerationMetadata carries free-form diagnostics (model name,
	// attempt count, validation outcome).
	GenerationMetadata map[string]any   `json:"generation_metadata,omitempty"`
	ValidationStatus   ValidationStatus `json:"validation_status"`
	ErrorMessage       string           `json:"error_message,omitempty"`
	GenerationTimeMs   int64            `json:"generation_time_ms"`
}

// GenerationResult summarizes a completed workflow run for callers.
type GenerationResult struct {
	Success           bool             `json:"success"`
	GeneratedHTML     string           `json:"generated_html"`
	SectionsProcessed int              `json:"sections_processed"`
	SectionsFailed    int              `json:"sections_failed"`
	Errors            []string         `json:"errors,omitempty"`
	Metadata          map[string]any   `json:"metadata,omitempty"`
	GenerationTimeMs  int64            `json:"generation_time_ms"`
	Status            GenerationStatus `json:"status"`
}

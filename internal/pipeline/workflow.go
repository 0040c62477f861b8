// Package pipeline orchestrates the document generation workflow: parse
// the HTML template into sections, regenerate each section against the
// project context, assemble the final document, and collect errors.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/document-generator/internal/parsing"
	"github.com/jonathan/document-generator/internal/types"
)

// Stage identifies a workflow stage for progress reporting.
type Stage string

// Workflow stages, in execution order.
const (
	StageInit           Stage = "init"
	StageParsed         Stage = "parsed"
	StageGenerating     Stage = "generating"
	StageValidated      Stage = "validated"
	StageAssembled      Stage = "assembled"
	StageErrorCollected Stage = "error_collected"
	StageDone           Stage = "done"
)

// ProgressEvent is a progress update emitted as the workflow advances.
type ProgressEvent struct {
	Stage        Stage  `json:"stage"`
	Message      string `json:"message"`
	SectionIndex int    `json:"section_index,omitempty"`
	TotalCount   int    `json:"total_count,omitempty"`
}

// ProgressCallback receives progress events. Callbacks run synchronously
// on the workflow goroutine and should return quickly.
type ProgressCallback func(event ProgressEvent)

// SectionGenerator produces a GeneratedSection for one section. It must
// encode failures in the result rather than panicking or blocking forever.
type SectionGenerator interface {
	GenerateSection(ctx context.Context, section types.Section, pctx types.ProjectContext) types.GeneratedSection
}

// Recorder observes per-section and per-run outcomes, typically for
// operational metrics. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordSection(generated types.GeneratedSection)
	RecordRun(result types.GenerationResult)
}

// State is the single mutable value threaded through every stage. The
// workflow always runs every stage and always returns a State; partial
// failure is recorded in Errors, never raised.
type State struct {
	HTMLTemplate        string                   `json:"html_template"`
	ProjectContext      types.ProjectContext     `json:"project_context"`
	Sections            []types.Section          `json:"sections"`
	GeneratedSections   []types.GeneratedSection `json:"generated_sections"`
	FinalHTML           string                   `json:"final_html"`
	Errors              []string                 `json:"errors"`
	Metadata            map[string]any           `json:"metadata"`
	CurrentSectionIndex int                      `json:"current_section_index"`
	TotalSections       int                      `json:"total_sections"`
}

// Result summarizes the state for callers.
func (s *State) Result(elapsed time.Duration) types.GenerationResult {
	failed := 0
	for _, g := range s.GeneratedSections {
		if g.ValidationStatus == types.ValidationInvalid {
			failed++
		}
	}

	status := types.GenerationCompleted
	switch {
	case s.TotalSections > 0 && failed == s.TotalSections:
		status = types.GenerationFailed
	case failed > 0:
		status = types.GenerationPartial
	}

	return types.GenerationResult{
		Success:           len(s.Errors) == 0,
		GeneratedHTML:     s.FinalHTML,
		SectionsProcessed: len(s.GeneratedSections),
		SectionsFailed:    failed,
		Errors:            s.Errors,
		Metadata:          s.Metadata,
		GenerationTimeMs:  elapsed.Milliseconds(),
		Status:            status,
	}
}

// Workflow drives the generation stages sequentially. Sections are
// processed strictly in order, one generate+validate pair at a time.
type Workflow struct {
	parser    *parsing.Parser
	generator SectionGenerator

	// OnProgress, when set, receives an event per stage transition.
	OnProgress ProgressCallback
	// Recorder, when set, observes section and run outcomes.
	Recorder Recorder
}

// NewWorkflow returns a Workflow over the given generator.
func NewWorkflow(generator SectionGenerator) *Workflow {
	return &Workflow{
		parser:    parsing.NewParser(),
		generator: generator,
	}
}

// Run executes all stages and returns the final state. It never fails as
// a whole: success is signaled by an empty Errors list.
func (w *Workflow) Run(ctx context.Context, htmlTemplate string, pctx types.ProjectContext) *State {
	state := &State{
		HTMLTemplate:   htmlTemplate,
		ProjectContext: pctx,
		Metadata:       make(map[string]any),
	}
	w.emit(ProgressEvent{Stage: StageInit, Message: "starting document generation"})

	state.Sections = w.parser.Parse(htmlTemplate)
	state.TotalSections = len(state.Sections)
	w.emit(ProgressEvent{
		Stage:      StageParsed,
		Message:    fmt.Sprintf("parsed template into %d sections", state.TotalSections),
		TotalCount: state.TotalSections,
	})

	for idx := 0; idx < state.TotalSections; idx++ {
		state.CurrentSectionIndex = idx
		w.emit(ProgressEvent{
			Stage:        StageGenerating,
			Message:      fmt.Sprintf("generating section %d of %d", idx+1, state.TotalSections),
			SectionIndex: idx,
			TotalCount:   state.TotalSections,
		})

		generated := w.generator.GenerateSection(ctx, state.Sections[idx], pctx)
		w.validateStructure(&generated)
		state.GeneratedSections = append(state.GeneratedSections, generated)

		if w.Recorder != nil {
			w.Recorder.RecordSection(generated)
		}
		w.emit(ProgressEvent{
			Stage:        StageValidated,
			Message:      fmt.Sprintf("validated section %d of %d: %s", idx+1, state.TotalSections, generated.ValidationStatus),
			SectionIndex: idx,
			TotalCount:   state.TotalSections,
		})
	}

	w.assemble(state)
	w.emit(ProgressEvent{Stage: StageAssembled, Message: "assembled final document"})

	w.collectErrors(state)
	w.emit(ProgressEvent{
		Stage:   StageErrorCollected,
		Message: fmt.Sprintf("collected %d errors", len(state.Errors)),
	})

	w.emit(ProgressEvent{Stage: StageDone, Message: "document generation complete"})
	return state
}

// validateStructure is a cheap workflow-level gate independent of the
// generator's relevance validation: generated HTML must be non-empty and
// contain at least one tag. It only ever downgrades a section's status.
func (w *Workflow) validateStructure(generated *types.GeneratedSection) {
	if generated.GeneratedHTML == "" || !strings.Contains(generated.GeneratedHTML, "<") {
		generated.ValidationStatus = types.ValidationInvalid
		if generated.ErrorMessage == "" {
			generated.ErrorMessage = "Generated content is empty or invalid."
		}
	}
}

// assemble newline-joins the non-empty generated fragments in order.
// Sections that failed entirely are omitted without placeholders, so the
// document just comes out shorter.
func (w *Workflow) assemble(state *State) {
	var parts []string
	for _, g := range state.GeneratedSections {
		if g.GeneratedHTML != "" {
			parts = append(parts, g.GeneratedHTML)
		}
	}
	state.FinalHTML = strings.Join(parts, "\n")
}

// collectErrors records one entry per invalid section.
func (w *Workflow) collectErrors(state *State) {
	state.Errors = nil
	for _, g := range state.GeneratedSections {
		if g.ValidationStatus == types.ValidationInvalid {
			state.Errors = append(state.Errors, fmt.Sprintf("Section %s: %s", g.SectionID, g.ErrorMessage))
		}
	}
}

func (w *Workflow) emit(event ProgressEvent) {
	if w.OnProgress != nil {
		w.OnProgress(event)
	}
}

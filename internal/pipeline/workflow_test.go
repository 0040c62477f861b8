package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/document-generator/internal/types"
)

// stubGenerator maps original fragments to canned results.
type stubGenerator struct {
	// generate decides the outcome for each section.
	generate func(section types.Section) types.GeneratedSection
	mu       sync.Mutex
	calls    []string
}

func (s *stubGenerator) GenerateSection(_ context.Context, section types.Section, _ types.ProjectContext) types.GeneratedSection {
	s.mu.Lock()
	s.calls = append(s.calls, section.ID)
	s.mu.Unlock()
	return s.generate(section)
}

func succeedAll(section types.Section) types.GeneratedSection {
	return types.GeneratedSection{
		SectionID:        section.ID,
		OriginalHTML:     section.HTMLContent,
		GeneratedHTML:    "<p>rewritten: " + section.ID + "</p>",
		ValidationStatus: types.ValidationValid,
	}
}

func testProjectContext() types.ProjectContext {
	return types.ProjectContext{
		ProjectName:        "Orbit",
		ProjectDescription: "A web scheduling app",
		PromptText:         "Rewrite for Orbit",
	}
}

const testTemplate = `<h1>Title</h1><p>Intro</p><h2>Details</h2><p>Body</p><table><tr><td>X</td></tr></table>`

func TestWorkflowRunHappyPath(t *testing.T) {
	gen := &stubGenerator{generate: succeedAll}
	wf := NewWorkflow(gen)

	state := wf.Run(context.Background(), testTemplate, testProjectContext())

	require.Equal(t, 3, state.TotalSections)
	require.Len(t, state.GeneratedSections, 3)
	assert.Empty(t, state.Errors)

	// Results line up with sections by position.
	for i, g := range state.GeneratedSections {
		assert.Equal(t, state.Sections[i].ID, g.SectionID)
		assert.Equal(t, types.ValidationValid, g.ValidationStatus)
	}

	// Assembly is newline-joined in order.
	parts := strings.Split(state.FinalHTML, "\n")
	require.Len(t, parts, 3)
	for i, part := range parts {
		assert.Equal(t, "<p>rewritten: "+state.Sections[i].ID+"</p>", part)
	}

	// The workflow loop is strictly sequential.
	wantOrder := make([]string, len(state.Sections))
	for i, sec := range state.Sections {
		wantOrder[i] = sec.ID
	}
	assert.Equal(t, wantOrder, gen.calls)
}

func TestWorkflowPartialFailure(t *testing.T) {
	gen := &stubGenerator{generate: func(section types.Section) types.GeneratedSection {
		if strings.Contains(section.HTMLContent, "Details") {
			return types.GeneratedSection{
				SectionID:        section.ID,
				OriginalHTML:     section.HTMLContent,
				GeneratedHTML:    "",
				ValidationStatus: types.ValidationInvalid,
				ErrorMessage:     "generation failed after retries",
			}
		}
		return succeedAll(section)
	}}
	wf := NewWorkflow(gen)

	state := wf.Run(context.Background(), testTemplate, testProjectContext())

	require.Equal(t, 3, state.TotalSections)
	require.Len(t, state.GeneratedSections, 3)

	// The failed section is recorded but omitted from the document.
	failedID := state.GeneratedSections[1].SectionID
	assert.Equal(t, types.ValidationInvalid, state.GeneratedSections[1].ValidationStatus)
	assert.NotContains(t, state.FinalHTML, "Details")
	assert.Len(t, strings.Split(state.FinalHTML, "\n"), 2)

	require.Len(t, state.Errors, 1)
	assert.Equal(t, "Section "+failedID+": generation failed after retries", state.Errors[0])
}

func TestWorkflowStructuralCheckDowngrades(t *testing.T) {
	tests := []struct {
		name       string
		generated  string
		status     types.ValidationStatus
		wantStatus types.ValidationStatus
		wantErr    string
	}{
		{
			name:       "empty output downgraded",
			generated:  "",
			status:     types.ValidationValid,
			wantStatus: types.ValidationInvalid,
			wantErr:    "Generated content is empty or invalid.",
		},
		{
			name:       "tagless output downgraded",
			generated:  "plain text, no markup",
			status:     types.ValidationValid,
			wantStatus: types.ValidationInvalid,
			wantErr:    "Generated content is empty or invalid.",
		},
		{
			name:       "structurally sound output kept",
			generated:  "<p>fine</p>",
			status:     types.ValidationValid,
			wantStatus: types.ValidationValid,
		},
		{
			name:       "generator verdict not upgraded",
			generated:  "<p>structurally fine</p>",
			status:     types.ValidationInvalid,
			wantStatus: types.ValidationInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{generate: func(section types.Section) types.GeneratedSection {
				return types.GeneratedSection{
					SectionID:        section.ID,
					GeneratedHTML:    tt.generated,
					ValidationStatus: tt.status,
				}
			}}
			wf := NewWorkflow(gen)

			state := wf.Run(context.Background(), "<p>one section</p>", testProjectContext())

			require.Len(t, state.GeneratedSections, 1)
			assert.Equal(t, tt.wantStatus, state.GeneratedSections[0].ValidationStatus)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, state.GeneratedSections[0].ErrorMessage)
			}
		})
	}
}

func TestWorkflowEmptyTemplate(t *testing.T) {
	gen := &stubGenerator{generate: succeedAll}
	wf := NewWorkflow(gen)

	state := wf.Run(context.Background(), "", testProjectContext())

	assert.Zero(t, state.TotalSections)
	assert.Empty(t, state.GeneratedSections)
	assert.Empty(t, state.FinalHTML)
	assert.Empty(t, state.Errors)
	assert.Empty(t, gen.calls)
}

func TestWorkflowProgressEvents(t *testing.T) {
	gen := &stubGenerator{generate: succeedAll}
	wf := NewWorkflow(gen)

	var stages []Stage
	wf.OnProgress = func(event ProgressEvent) {
		stages = append(stages, event.Stage)
	}

	wf.Run(context.Background(), "<p>a</p><p>b</p>", testProjectContext())

	// One paragraph section: init, parsed, generating+validated, assembled,
	// error_collected, done.
	assert.Equal(t, []Stage{
		StageInit, StageParsed,
		StageGenerating, StageValidated,
		StageAssembled, StageErrorCollected, StageDone,
	}, stages)
}

// memoryRecorder captures recorded sections for assertions.
type memoryRecorder struct {
	mu       sync.Mutex
	sections []types.GeneratedSection
	runs     []types.GenerationResult
}

func (r *memoryRecorder) RecordSection(g types.GeneratedSection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, g)
}

func (r *memoryRecorder) RecordRun(result types.GenerationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, result)
}

func TestWorkflowRecorder(t *testing.T) {
	gen := &stubGenerator{generate: succeedAll}
	wf := NewWorkflow(gen)
	rec := &memoryRecorder{}
	wf.Recorder = rec

	state := wf.Run(context.Background(), testTemplate, testProjectContext())

	assert.Len(t, rec.sections, state.TotalSections)
}

func TestStateResult(t *testing.T) {
	state := &State{
		TotalSections: 3,
		GeneratedSections: []types.GeneratedSection{
			{ValidationStatus: types.ValidationValid},
			{ValidationStatus: types.ValidationInvalid},
			{ValidationStatus: types.ValidationValid},
		},
		Errors:    []string{"Section x: failed"},
		FinalHTML: "<p>doc</p>",
	}

	result := state.Result(2 * time.Second)

	assert.False(t, result.Success)
	assert.Equal(t, types.GenerationPartial, result.Status)
	assert.Equal(t, 3, result.SectionsProcessed)
	assert.Equal(t, 1, result.SectionsFailed)
	assert.Equal(t, int64(2000), result.GenerationTimeMs)

	allFailed := &State{
		TotalSections: 1,
		GeneratedSections: []types.GeneratedSection{
			{ValidationStatus: types.ValidationInvalid},
		},
		Errors: []string{"Section y: failed"},
	}
	assert.Equal(t, types.GenerationFailed, allFailed.Result(0).Status)

	clean := &State{
		TotalSections: 1,
		GeneratedSections: []types.GeneratedSection{
			{ValidationStatus: types.ValidationValid},
		},
	}
	assert.Equal(t, types.GenerationCompleted, clean.Result(0).Status)
	assert.True(t, clean.Result(0).Success)
}

package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/document-generator/internal/analysis"
	"github.com/jonathan/document-generator/internal/db"
	"github.com/jonathan/document-generator/internal/ingestion"
	"github.com/jonathan/document-generator/internal/pipeline"
	"github.com/jonathan/document-generator/internal/types"
)

// GenerateRequest represents the request body for /generate
type GenerateRequest struct {
	Template           string         `json:"template"`
	ProjectName        string         `json:"project_name"`
	ProjectDescription string         `json:"project_description"`
	Prompt             string         `json:"prompt"`
	JSONOverrides      map[string]any `json:"json_overrides,omitempty"`
	StrictVars         map[string]any `json:"strict_vars,omitempty"`
}

// GenerateResponse represents the response for /generate
type GenerateResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// RunResponse represents the response for /runs/{id}
type RunResponse struct {
	RunID          string `json:"run_id"`
	ProjectName    string `json:"project_name"`
	TemplateSource string `json:"template_source"`
	Status         string `json:"status"`
	SectionsTotal  int    `json:"sections_total"`
	SectionsFailed int    `json:"sections_failed"`
	CreatedAt      string `json:"created_at"`
}

// parseGenerateRequest decodes and validates the request, returning the
// sanitized project context on success.
func (s *Server) parseGenerateRequest(w http.ResponseWriter, r *http.Request) (string, types.ProjectContext, bool) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return "", types.ProjectContext{}, false
	}

	if req.Template == "" {
		s.errorResponse(w, http.StatusBadRequest, "template is required")
		return "", types.ProjectContext{}, false
	}

	input := types.UserInput{
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		PromptText:         req.Prompt,
		JSONOverrides:      req.JSONOverrides,
		StrictVars:         req.StrictVars,
	}
	if err := ingestion.ValidateInput(input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return "", types.ProjectContext{}, false
	}

	return req.Template, ingestion.BuildContext(input), true
}

// handleGenerate starts a generation run in the background
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	template, pctx, ok := s.parseGenerateRequest(w, r)
	if !ok {
		return
	}

	runID, err := s.db.CreateRun(r.Context(), pctx.ProjectName, "inline")
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	log.Printf("Starting generation run %s", runID)

	// Run generation in background
	go func() {
		ctx := context.Background()
		if err := s.runGeneration(ctx, runID, template, pctx, nil); err != nil {
			log.Printf("Generation run %s failed: %v", runID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, GenerateResponse{
		RunID:  runID.String(),
		Status: "started",
	})
}

// handleGenerateStream runs generation synchronously and streams progress via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	template, pctx, ok := s.parseGenerateRequest(w, r)
	if !ok {
		return
	}

	runID, err := s.db.CreateRun(r.Context(), pctx.ProjectName, "inline")
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting streaming generation run %s", runID)

	onProgress := func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("stage", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	}

	if err := s.runGeneration(r.Context(), runID, template, pctx, onProgress); err != nil {
		log.Printf("Generation run %s failed: %v", runID, err)
		sse.WriteError(err.Error())
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	status := db.RunStatusCompleted
	if err == nil && run != nil {
		status = run.Status
	}
	sse.WriteComplete(runID.String(), status)
	log.Printf("Streaming generation run %s completed", runID)
}

// runGeneration executes the workflow for one run and persists its artifacts.
func (s *Server) runGeneration(ctx context.Context, runID uuid.UUID, template string, pctx types.ProjectContext, onProgress pipeline.ProgressCallback) error {
	workflow := pipeline.NewWorkflow(s.generator)
	workflow.OnProgress = onProgress
	workflow.Recorder = s.metrics

	start := time.Now()
	state := workflow.Run(ctx, template, pctx)
	result := state.Result(time.Since(start))
	s.metrics.RecordRun(result)

	// Persist artifacts; the run row is completed even when saves fail so
	// the caller can still see the outcome.
	saves := []struct {
		step string
		err  error
	}{
		{db.StepTemplateHTML, s.db.SaveTextArtifact(ctx, runID, db.StepTemplateHTML, "input", template)},
		{db.StepProjectContext, s.db.SaveArtifact(ctx, runID, db.StepProjectContext, "input", pctx)},
		{db.StepSections, s.db.SaveArtifact(ctx, runID, db.StepSections, "parsing", state.Sections)},
		{db.StepProjectMetrics, s.db.SaveArtifact(ctx, runID, db.StepProjectMetrics, "analysis", analysis.NewAnalyzer().Analyze(pctx))},
		{db.StepGeneratedSections, s.db.SaveArtifact(ctx, runID, db.StepGeneratedSections, "generation", state.GeneratedSections)},
		{db.StepFinalHTML, s.db.SaveTextArtifact(ctx, runID, db.StepFinalHTML, "output", state.FinalHTML)},
		{db.StepRunResult, s.db.SaveArtifact(ctx, runID, db.StepRunResult, "output", result)},
	}
	for _, save := range saves {
		if save.err != nil {
			log.Printf("Run %s: failed to save artifact %s: %v", runID, save.step, save.err)
		}
	}

	return s.db.CompleteRun(ctx, runID, string(result.Status), result.SectionsProcessed, result.SectionsFailed)
}

// handleGetRun returns the status of a generation run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, RunResponse{
		RunID:          run.ID.String(),
		ProjectName:    run.ProjectName,
		TemplateSource: run.TemplateSource,
		Status:         run.Status,
		SectionsTotal:  run.SectionsTotal,
		SectionsFailed: run.SectionsFailed,
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
	})
}

// handleListRuns returns recent runs, optionally filtered
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filters := db.RunFilters{
		ProjectName: r.URL.Query().Get("project"),
		Status:      r.URL.Query().Get("status"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filters.Limit = limit
	}

	runs, err := s.db.ListRunsFiltered(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// handleDeleteRun deletes a run and its artifacts
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	if err := s.db.DeleteRun(r.Context(), runID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted", "run_id": runID.String()})
}

// handleRunArtifacts lists the artifacts recorded for a run
func (s *Server) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	artifacts, err := s.db.ListArtifacts(r.Context(), db.ArtifactFilters{RunID: runID})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if artifacts == nil {
		artifacts = []db.ArtifactSummary{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"artifacts": artifacts, "count": len(artifacts)})
}

// handleRunDocument returns the assembled HTML document for a run
func (s *Server) handleRunDocument(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	html, err := s.db.GetFinalHTMLByRunID(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if html == "" {
		s.errorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		log.Printf("Error writing document response: %v", err)
	}
}

// handleArtifact returns an artifact by ID
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Artifact ID is required")
		return
	}

	artifactID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid artifact ID format")
		return
	}

	artifact, err := s.db.GetArtifactByID(r.Context(), artifactID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if artifact == nil {
		s.errorResponse(w, http.StatusNotFound, "Artifact not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, artifact)
}

// parseRunID reads and validates the run ID path segment.
func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Run ID is required")
		return uuid.Nil, false
	}

	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return uuid.Nil, false
	}
	return runID, true
}

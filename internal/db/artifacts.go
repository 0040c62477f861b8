package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/document-generator/internal/analysis"
	"github.com/jonathan/document-generator/internal/types"
)

// GetProjectContextByRunID loads the project context artifact for a run
func (db *DB) GetProjectContextByRunID(ctx context.Context, runID uuid.UUID) (*types.ProjectContext, error) {
	content, err := db.GetArtifact(ctx, runID, StepProjectContext)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var pctx types.ProjectContext
	if err := json.Unmarshal(content, &pctx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project context: %w", err)
	}
	return &pctx, nil
}

// GetSectionsByRunID loads the parsed sections artifact for a run
func (db *DB) GetSectionsByRunID(ctx context.Context, runID uuid.UUID) ([]types.Section, error) {
	content, err := db.GetArtifact(ctx, runID, StepSections)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var sections []types.Section
	if err := json.Unmarshal(content, &sections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
	}
	return sections, nil
}

// GetMetricsByRunID loads the project metrics artifact for a run
func (db *DB) GetMetricsByRunID(ctx context.Context, runID uuid.UUID) (*analysis.ProjectMetrics, error) {
	content, err := db.GetArtifact(ctx, runID, StepProjectMetrics)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var metrics analysis.ProjectMetrics
	if err := json.Unmarshal(content, &metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project metrics: %w", err)
	}
	return &metrics, nil
}

// GetGeneratedSectionsByRunID loads the generated sections artifact for a run
func (db *DB) GetGeneratedSectionsByRunID(ctx context.Context, runID uuid.UUID) ([]types.GeneratedSection, error) {
	content, err := db.GetArtifact(ctx, runID, StepGeneratedSections)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var generated []types.GeneratedSection
	if err := json.Unmarshal(content, &generated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generated sections: %w", err)
	}
	return generated, nil
}

// GetRunResultByRunID loads the run result artifact for a run
func (db *DB) GetRunResultByRunID(ctx context.Context, runID uuid.UUID) (*types.GenerationResult, error) {
	content, err := db.GetArtifact(ctx, runID, StepRunResult)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var result types.GenerationResult
	if err := json.Unmarshal(content, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run result: %w", err)
	}
	return &result, nil
}

// GetFinalHTMLByRunID loads the assembled document for a run.
// Returns an empty string when the run has not produced one yet.
func (db *DB) GetFinalHTMLByRunID(ctx context.Context, runID uuid.UUID) (string, error) {
	return db.GetTextArtifact(ctx, runID, StepFinalHTML)
}

// GetTemplateHTMLByRunID loads the original template for a run
func (db *DB) GetTemplateHTMLByRunID(ctx context.Context, runID uuid.UUID) (string, error) {
	return db.GetTextArtifact(ctx, runID, StepTemplateHTML)
}

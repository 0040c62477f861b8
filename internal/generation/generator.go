// Package generation rewrites parsed document sections against a project
// context by prompting an external language model, with bounded concurrency
// and per-section retry. Failures are encoded in the returned results, never
// raised.
package generation

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/document-generator/internal/analysis"
	"github.com/jonathan/document-generator/internal/types"
)

// Model is the external generation endpoint. Implementations must honor
// context cancellation and return an error (or empty text) on any
// transport or API failure.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Options tunes retry and fan-out behavior.
type Options struct {
	// MaxAttempts is the total number of calls per section, retries included.
	MaxAttempts int
	// Backoff is the base delay between attempts; attempt n waits n x Backoff.
	Backoff time.Duration
	// MaxConcurrent caps simultaneous in-flight model calls.
	MaxConcurrent int64
}

// DefaultOptions returns the production retry and concurrency settings.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:   3,
		Backoff:       1500 * time.Millisecond,
		MaxConcurrent: 5,
	}
}

// Generator produces a GeneratedSection per input Section.
type Generator struct {
	model    Model
	analyzer *analysis.Analyzer
	opts     Options
	sem      *semaphore.Weighted

	// sleep is swappable so tests can observe backoff without waiting.
	sleep func(context.Context, time.Duration)
}

// NewGenerator returns a Generator with default options.
func NewGenerator(model Model) *Generator {
	return NewGeneratorWithOptions(model, DefaultOptions())
}

// NewGeneratorWithOptions returns a Generator with custom retry and
// concurrency settings.
func NewGeneratorWithOptions(model Model, opts Options) *Generator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &Generator{
		model:    model,
		analyzer: analysis.NewAnalyzer(),
		opts:     opts,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
		sleep:    sleepContext,
	}
}

// GenerateSection rewrites one section. It never returns an error: a
// section that could not be generated comes back with an empty
// GeneratedHTML, an Invalid status, and the captured error string.
func (g *Generator) GenerateSection(ctx context.Context, section types.Section, pctx types.ProjectContext) types.GeneratedSection {
	metrics := g.analyzer.Analyze(pctx)
	return g.generate(ctx, section, pctx, metrics)
}

// GenerateSections rewrites sections concurrently, gated by the
// concurrency cap. The result slice matches the input slice by index
// regardless of completion order.
func (g *Generator) GenerateSections(ctx context.Context, sections []types.Section, pctx types.ProjectContext) []types.GeneratedSection {
	metrics := g.analyzer.Analyze(pctx)
	results := make([]types.GeneratedSection, len(sections))

	grp, grpCtx := errgroup.WithContext(ctx)
	for i, section := range sections {
		grp.Go(func() error {
			if err := g.sem.Acquire(grpCtx, 1); err != nil {
				results[i] = failedSection(section, g.model.Name(), err.Error(), 0)
				return nil
			}
			defer g.sem.Release(1)
			results[i] = g.generate(grpCtx, section, pctx, metrics)
			return nil
		})
	}
	_ = grp.Wait()
	return results
}

func (g *Generator) generate(ctx context.Context, section types.Section, pctx types.ProjectContext, metrics analysis.ProjectMetrics) types.GeneratedSection {
	prompt := buildPrompt(section, pctx, metrics)
	start := time.Now()

	var lastErr string
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		text, err := g.model.Generate(ctx, prompt)
		switch {
		case err != nil:
			lastErr = err.Error()
		case strings.TrimSpace(text) == "":
			lastErr = "empty response from generation API"
		default:
			processed := postprocess(text)
			verr := analysis.ValidateGeneratedContent(section.HTMLContent, processed, pctx)
			if verr == nil {
				return types.GeneratedSection{
					SectionID:     section.ID,
					OriginalHTML:  section.HTMLContent,
					GeneratedHTML: processed,
					GenerationMetadata: map[string]any{
						"model":    g.model.Name(),
						"attempts": attempt,
					},
					ValidationStatus: types.ValidationValid,
					GenerationTimeMs: time.Since(start).Milliseconds(),
				}
			}
			lastErr = verr.Error()
			if attempt == g.opts.MaxAttempts {
				// The last attempt's output is still returned so callers
				// can inspect what the model produced.
				return types.GeneratedSection{
					SectionID:     section.ID,
					OriginalHTML:  section.HTMLContent,
					GeneratedHTML: processed,
					GenerationMetadata: map[string]any{
						"model":    g.model.Name(),
						"attempts": attempt,
						"error":    lastErr,
					},
					ValidationStatus: types.ValidationInvalid,
					ErrorMessage:     lastErr,
					GenerationTimeMs: time.Since(start).Milliseconds(),
				}
			}
		}
		if attempt < g.opts.MaxAttempts {
			g.sleep(ctx, time.Duration(attempt)*g.opts.Backoff)
		}
	}

	return failedSection(section, g.model.Name(), lastErr, time.Since(start).Milliseconds())
}

func failedSection(section types.Section, model, errMsg string, elapsed int64) types.GeneratedSection {
	return types.GeneratedSection{
		SectionID:    section.ID,
		OriginalHTML: section.HTMLContent,
		GenerationMetadata: map[string]any{
			"model": model,
			"error": errMsg,
		},
		ValidationStatus: types.ValidationInvalid,
		ErrorMessage:     errMsg,
		GenerationTimeMs: elapsed,
	}
}

var (
	fenceRE      = regexp.MustCompile("```(html)?")
	mdHeading2RE = regexp.MustCompile(`(?m)^## (.+)$`)
	mdHeading1RE = regexp.MustCompile(`(?m)^# (.+)$`)
)

// postprocess strips Markdown artifacts the model emits despite the
// HTML-only directive: code fences with an optional language token,
// leading # / ## headings, and stray backticks.
func postprocess(output string) string {
	output = fenceRE.ReplaceAllString(output, "")
	output = mdHeading2RE.ReplaceAllString(output, "<h2>$1</h2>")
	output = mdHeading1RE.ReplaceAllString(output, "<h1>$1</h1>")
	output = strings.ReplaceAll(output, "`", "")
	return strings.TrimSpace(output)
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

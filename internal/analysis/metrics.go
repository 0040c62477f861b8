// Package analysis derives project-specific metrics (complexity, hours,
// timeline, resources, costs) from a ProjectContext so that generated
// documents carry fabricated, project-plausible numbers instead of values
// copied from the reference template.
package analysis

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/document-generator/internal/types"
)

// ProjectMetrics holds the calculated values for one project.
type ProjectMetrics struct {
	ComplexityScore float64 `json:"complexity_score"`
	// EstimatedHours maps phase name to hours and includes a "total" entry.
	EstimatedHours map[string]int `json:"estimated_hours"`
	// Timeline maps phase name to a "Week X - Week Y" range and includes a
	// "duration" entry.
	Timeline     map[string]string `json:"timeline_breakdown"`
	Resources    []string          `json:"resource_requirements"`
	CustomValues map[string]any    `json:"custom_values"`
}

// complexityFactors multiply into the score for every project-type keyword
// found in the description. Multiple keywords compound.
var complexityFactors = map[string]float64{
	"web":        1.0,
	"mobile":     1.2,
	"desktop":    1.1,
	"api":        0.9,
	"data":       1.3,
	"ml":         1.5,
	"blockchain": 1.6,
	"iot":        1.4,
	"game":       1.3,
	"enterprise": 1.4,
}

// basePhases are the project phases and their base hours, in layout order.
var basePhases = []struct {
	name  string
	hours int
}{
	{"requirements", 20},
	{"design", 30},
	{"development", 100},
	{"testing", 40},
	{"deployment", 15},
	{"documentation", 10},
}

// timelineFactors scale phase durations by project size (in weeks per 40h).
var timelineFactors = map[string]float64{
	"small":      0.5,
	"medium":     1.0,
	"large":      2.0,
	"enterprise": 3.0,
}

const defaultHourlyRate = 100.0

var weekRangeRE = regexp.MustCompile(`Week (\d+) - Week (\d+)`)

// Analyzer computes ProjectMetrics. The clock is injectable so milestone
// dates are testable.
type Analyzer struct {
	now func() time.Time
}

// NewAnalyzer returns an Analyzer using the wall clock.
func NewAnalyzer() *Analyzer {
	return &Analyzer{now: time.Now}
}

// NewAnalyzerWithClock returns an Analyzer with a fixed clock.
func NewAnalyzerWithClock(now func() time.Time) *Analyzer {
	return &Analyzer{now: now}
}

// Analyze is a pure function of the context apart from a name-seeded jitter
// and the milestone base date. Repeated calls for the same project produce
// the same numbers.
func (a *Analyzer) Analyze(ctx types.ProjectContext) ProjectMetrics {
	complexity := complexityScore(ctx)
	hours := estimatedHours(ctx, complexity)
	return ProjectMetrics{
		ComplexityScore: complexity,
		EstimatedHours:  hours,
		Timeline:        timeline(ctx, hours),
		Resources:       resources(ctx, complexity),
		CustomValues:    a.customValues(ctx, complexity, hours),
	}
}

// complexityScore compounds keyword factors over the lowercased description,
// applies an explicit override when present, and clamps to [0.5, 3.0].
func complexityScore(ctx types.ProjectContext) float64 {
	score := 1.0
	description := strings.ToLower(ctx.ProjectDescription)

	for keyword, factor := range complexityFactors {
		if strings.Contains(description, keyword) {
			score *= factor
		}
	}

	if containsAny(description, "complex", "complicated", "advanced", "sophisticated") {
		score *= 1.3
	} else if containsAny(description, "simple", "basic", "straightforward") {
		score *= 0.7
	}

	if containsAny(description, "large", "enterprise", "extensive") {
		score *= 1.4
	} else if containsAny(description, "small", "minimal", "prototype") {
		score *= 0.6
	}

	if override, ok := numericOverride(ctx.JSONOverrides, "complexity"); ok {
		score = override
	}

	return math.Max(0.5, math.Min(3.0, score))
}

// estimatedHours computes per-phase hours as base x complexity x jitter,
// applies per-phase overrides, and appends a "total" entry.
func estimatedHours(ctx types.ProjectContext, complexity float64) map[string]int {
	result := make(map[string]int, len(basePhases)+1)
	for _, phase := range basePhases {
		result[phase.name] = int(float64(phase.hours) * complexity * jitter(ctx.ProjectName, phase.name))
	}

	if overrides, ok := ctx.JSONOverrides["hours"].(map[string]any); ok {
		for phase, v := range overrides {
			if hours, ok := numericValue(v); ok {
				result[phase] = int(hours)
			}
		}
	}

	total := 0
	for _, h := range result {
		total += h
	}
	result["total"] = total
	return result
}

// jitter is a deterministic +/-10% factor seeded by project name and phase.
// FNV-1a keeps it stable across processes.
func jitter(projectName, phase string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(projectName + phase))
	return 0.9 + 0.2*float64(h.Sum64()%100)/100
}

// timeline lays phases out as sequential non-overlapping week ranges scaled
// by a project-size factor, then applies per-phase overrides.
func timeline(ctx types.ProjectContext, hours map[string]int) map[string]string {
	total := hours["total"]

	size := "small"
	switch {
	case total > 500:
		size = "enterprise"
	case total > 300:
		size = "large"
	case total > 150:
		size = "medium"
	}
	factor := timelineFactors[size]

	result := make(map[string]string, len(hours))
	currentWeek := 1
	for _, phase := range phaseOrder(hours) {
		phaseWeeks := int(float64(hours[phase]) / 40 * factor)
		if phaseWeeks < 1 {
			phaseWeeks = 1
		}
		endWeek := currentWeek + phaseWeeks - 1
		result[phase] = fmt.Sprintf("Week %d - Week %d", currentWeek, endWeek)
		currentWeek = endWeek + 1
	}
	result["duration"] = fmt.Sprintf("%d weeks", currentWeek-1)

	if overrides, ok := ctx.JSONOverrides["timeline"].(map[string]any); ok {
		for phase, v := range overrides {
			if s, ok := v.(string); ok {
				result[phase] = s
			}
		}
	}
	return result
}

// phaseOrder returns the phases present in hours in layout order: the base
// phases first, then any override-introduced phases sorted by name.
func phaseOrder(hours map[string]int) []string {
	order := make([]string, 0, len(hours))
	seen := make(map[string]bool, len(hours))
	for _, phase := range basePhases {
		if _, ok := hours[phase.name]; ok {
			order = append(order, phase.name)
			seen[phase.name] = true
		}
	}
	var extra []string
	for phase := range hours {
		if !seen[phase] && phase != "total" {
			extra = append(extra, phase)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// resources derives the staffing list from complexity and description
// keywords. A "resources" override replaces the list wholesale.
func resources(ctx types.ProjectContext, complexity float64) []string {
	if override, ok := ctx.JSONOverrides["resources"].([]any); ok {
		replaced := make([]string, 0, len(override))
		for _, v := range override {
			if s, ok := v.(string); ok {
				replaced = append(replaced, s)
			}
		}
		return replaced
	}

	result := []string{"Project Manager"}
	description := strings.ToLower(ctx.ProjectDescription)

	devCount := int(complexity * 2)
	if devCount < 1 {
		devCount = 1
	}
	result = append(result, fmt.Sprintf("%d Developers", devCount))

	if containsAny(description, "ui", "ux", "user interface", "user experience", "frontend", "front-end") {
		result = append(result, "UI/UX Designer")
	}
	if complexity > 1.0 {
		qaCount := int(complexity)
		if qaCount < 1 {
			qaCount = 1
		}
		result = append(result, fmt.Sprintf("%d QA Engineers", qaCount))
	}
	if containsAny(description, "devops", "ci/cd", "deployment", "cloud", "infrastructure") {
		result = append(result, "DevOps Engineer")
	}
	if containsAny(description, "data", "analytics", "database", "sql", "nosql") {
		result = append(result, "Data Engineer")
	}
	if containsAny(description, "ml", "ai", "machine learning", "artificial intelligence") {
		result = append(result, "ML Engineer")
	}
	return result
}

// customValues assembles cost, risk, and milestone dates, then merges any
// "custom" overrides last so they win on key collisions.
func (a *Analyzer) customValues(ctx types.ProjectContext, complexity float64, hours map[string]int) map[string]any {
	custom := make(map[string]any)

	hourlyRate := defaultHourlyRate
	if override, ok := numericOverride(ctx.JSONOverrides, "hourly_rate"); ok {
		hourlyRate = override
	}
	custom["cost_estimate"] = int(float64(hours["total"]) * hourlyRate)

	risk := "Medium"
	switch {
	case complexity > 2.0:
		risk = "High"
	case complexity < 1.0:
		risk = "Low"
	}
	custom["risk_level"] = risk

	today := a.now()
	milestones := make(map[string]string)
	for phase, weekRange := range timeline(ctx, hours) {
		if phase == "duration" {
			continue
		}
		if m := weekRangeRE.FindStringSubmatch(weekRange); m != nil {
			endWeek, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			endDate := today.AddDate(0, 0, endWeek*7)
			milestones[phase] = endDate.Format("2006-01-02")
		}
	}
	custom["milestones"] = milestones

	if overrides, ok := ctx.JSONOverrides["custom"].(map[string]any); ok {
		for k, v := range overrides {
			custom[k] = v
		}
	}
	return custom
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// numericOverride extracts a numeric override value, tolerating JSON
// numbers and numeric strings. Non-numeric values are ignored.
func numericOverride(overrides map[string]any, key string) (float64, bool) {
	v, ok := overrides[key]
	if !ok {
		return 0, false
	}
	return numericValue(v)
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

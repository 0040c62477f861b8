package observability

import (
	"sync"
	"time"

	"github.com/jonathan/document-generator/internal/types"
)

const recentErrorLimit = 100

// RecordedError is one captured generation failure.
type RecordedError struct {
	SectionID string    `json:"section_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of collected metrics.
type Snapshot struct {
	Runs          int             `json:"runs"`
	Sections      int             `json:"sections"`
	SectionsOK    int             `json:"sections_ok"`
	SectionsFail  int             `json:"sections_fail"`
	TotalTimeMs   int64           `json:"total_time_ms"`
	AvgTimeMs     int64           `json:"avg_time_ms"`
	MinTimeMs     int64           `json:"min_time_ms"`
	MaxTimeMs     int64           `json:"max_time_ms"`
	RecentErrors  []RecordedError `json:"recent_errors"`
}

// Collector accumulates generation metrics in memory. It is safe for
// concurrent use and implements the pipeline Recorder contract.
type Collector struct {
	mu sync.Mutex

	runs         int
	sections     int
	sectionsOK   int
	sectionsFail int
	totalTimeMs  int64
	minTimeMs    int64
	maxTimeMs    int64

	// recentErrors is a ring of the last N failures.
	recentErrors []RecordedError

	now func() time.Time
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{now: time.Now}
}

// RecordSection tracks one generated section's outcome and timing.
func (c *Collector) RecordSection(generated types.GeneratedSection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sections++
	if generated.ValidationStatus == types.ValidationInvalid {
		c.sectionsFail++
		c.recentErrors = append(c.recentErrors, RecordedError{
			SectionID: generated.SectionID,
			Message:   generated.ErrorMessage,
			Timestamp: c.now(),
		})
		if len(c.recentErrors) > recentErrorLimit {
			c.recentErrors = c.recentErrors[len(c.recentErrors)-recentErrorLimit:]
		}
	} else {
		c.sectionsOK++
	}

	elapsed := generated.GenerationTimeMs
	c.totalTimeMs += elapsed
	if c.sections == 1 || elapsed < c.minTimeMs {
		c.minTimeMs = elapsed
	}
	if elapsed > c.maxTimeMs {
		c.maxTimeMs = elapsed
	}
}

// RecordRun tracks one completed workflow run.
func (c *Collector) RecordRun(types.GenerationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
}

// Snapshot returns a copy of the current metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Runs:         c.runs,
		Sections:     c.sections,
		SectionsOK:   c.sectionsOK,
		SectionsFail: c.sectionsFail,
		TotalTimeMs:  c.totalTimeMs,
		MinTimeMs:    c.minTimeMs,
		MaxTimeMs:    c.maxTimeMs,
		RecentErrors: append([]RecordedError(nil), c.recentErrors...),
	}
	if c.sections > 0 {
		snap.AvgTimeMs = c.totalTimeMs / int64(c.sections)
	}
	return snap
}

// Reset clears all collected metrics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = 0
	c.sections = 0
	c.sectionsOK = 0
	c.sectionsFail = 0
	c.totalTimeMs = 0
	c.minTimeMs = 0
	c.maxTimeMs = 0
	c.recentErrors = nil
}

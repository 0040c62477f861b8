package observability

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/document-generator/internal/types"
)

func TestCollectorRecordSection(t *testing.T) {
	c := NewCollector()

	c.RecordSection(types.GeneratedSection{
		SectionID:        "a",
		ValidationStatus: types.ValidationValid,
		GenerationTimeMs: 100,
	})
	c.RecordSection(types.GeneratedSection{
		SectionID:        "b",
		ValidationStatus: types.ValidationInvalid,
		ErrorMessage:     "boom",
		GenerationTimeMs: 300,
	})
	c.RecordSection(types.GeneratedSection{
		SectionID:        "c",
		ValidationStatus: types.ValidationValid,
		GenerationTimeMs: 200,
	})

	snap := c.Snapshot()

	assert.Equal(t, 3, snap.Sections)
	assert.Equal(t, 2, snap.SectionsOK)
	assert.Equal(t, 1, snap.SectionsFail)
	assert.Equal(t, int64(600), snap.TotalTimeMs)
	assert.Equal(t, int64(200), snap.AvgTimeMs)
	assert.Equal(t, int64(100), snap.MinTimeMs)
	assert.Equal(t, int64(300), snap.MaxTimeMs)

	require.Len(t, snap.RecentErrors, 1)
	assert.Equal(t, "b", snap.RecentErrors[0].SectionID)
	assert.Equal(t, "boom", snap.RecentErrors[0].Message)
}

func TestCollectorRecentErrorsBounded(t *testing.T) {
	c := NewCollector()
	c.now = func() time.Time { return time.Unix(0, 0) }

	for i := 0; i < recentErrorLimit+25; i++ {
		c.RecordSection(types.GeneratedSection{
			SectionID:        fmt.Sprintf("sec-%d", i),
			ValidationStatus: types.ValidationInvalid,
			ErrorMessage:     "fail",
		})
	}

	snap := c.Snapshot()
	require.Len(t, snap.RecentErrors, recentErrorLimit)
	// Oldest entries are evicted first.
	assert.Equal(t, "sec-25", snap.RecentErrors[0].SectionID)
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.RecordSection(types.GeneratedSection{
					ValidationStatus: types.ValidationValid,
					GenerationTimeMs: 10,
				})
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, 1000, snap.Sections)
	assert.Equal(t, int64(10000), snap.TotalTimeMs)
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	c.RecordSection(types.GeneratedSection{ValidationStatus: types.ValidationValid, GenerationTimeMs: 50})
	c.RecordRun(types.GenerationResult{})

	c.Reset()

	snap := c.Snapshot()
	assert.Zero(t, snap.Sections)
	assert.Zero(t, snap.Runs)
	assert.Empty(t, snap.RecentErrors)
}

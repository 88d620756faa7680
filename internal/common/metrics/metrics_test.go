package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJobCounters(t *testing.T) {
	before := testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test"))
	JobCompleted("metrics-test")
	JobCompleted("metrics-test")
	assert.Equal(t, before+2, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test")))

	JobFailed("metrics-test", "IDEA_NOT_FOUND")
	assert.Equal(t, float64(1), testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "IDEA_NOT_FOUND")))
}

func TestCacheResult(t *testing.T) {
	CacheResult("metrics-test", true)
	CacheResult("metrics-test", false)
	CacheResult("metrics-test", false)

	assert.Equal(t, float64(1), testutil.ToFloat64(CacheLookups.WithLabelValues("metrics-test", "hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(CacheLookups.WithLabelValues("metrics-test", "miss")))
}

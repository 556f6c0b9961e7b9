package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBackend(t *testing.T) {
	before := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("GET", "200"))
	RecordBackend("GET", "200", 0.01)
	after := testutil.ToFloat64(BackendRequestsTotal.WithLabelValues("GET", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordEnrichment(t *testing.T) {
	RecordEnrichment("organization", true)
	RecordEnrichment("organization", false)
	assert.GreaterOrEqual(t, testutil.ToFloat64(EnrichmentStepsTotal.WithLabelValues("organization", "success")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(EnrichmentStepsTotal.WithLabelValues("organization", "failure")), 1.0)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(PipelineRuns.WithLabelValues("manual", "done"))
	PipelineRuns.WithLabelValues("manual", "done").Inc()
	after := testutil.ToFloat64(PipelineRuns.WithLabelValues("manual", "done"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}

	SourceRequests.WithLabelValues("artic", "success").Add(2)
	if got := testutil.ToFloat64(SourceRequests.WithLabelValues("artic", "success")); got < 2 {
		t.Fatalf("expected at least 2, got %v", got)
	}
}

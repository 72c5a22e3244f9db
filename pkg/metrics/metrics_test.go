package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordNegotiationCountsOutcome(t *testing.T) {
	SetServiceLabel("test")
	RecordNegotiation("ACCEPT", nil)
	RecordNegotiation("ACCEPT", errors.New("not open"))
	RecordNegotiation("ACCEPT", errors.New("not open"))

	if got := testutil.ToFloat64(NegotiationTransitionsTotal.WithLabelValues("test", "ACCEPT", "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(NegotiationTransitionsTotal.WithLabelValues("test", "ACCEPT", "error")); got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
}

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("attrwire-a", "POST", "/v1/decode", 200, 12*time.Millisecond)
	RecordEncode(true)
	RecordEncode(false)
}

func TestRecordDecodeCountsViolationsOnlyOnEarlyStop(t *testing.T) {
	before := testutil.ToFloat64(decodeViolations.WithLabelValues("too_many_values"))
	conversionsBefore := testutil.ToFloat64(decodeConversions)

	RecordDecode(true, 3, "none")
	RecordDecode(false, 1, "too_many_values")

	if got := testutil.ToFloat64(decodeViolations.WithLabelValues("too_many_values")) - before; got != 1 {
		t.Fatalf("expected one too_many_values violation, got %v", got)
	}
	if got := testutil.ToFloat64(decodeConversions) - conversionsBefore; got != 4 {
		t.Fatalf("expected 4 conversions recorded, got %v", got)
	}
}

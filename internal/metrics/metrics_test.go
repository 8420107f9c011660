package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPage(t *testing.T) {
	before := testutil.ToFloat64(PageRequestsTotal.WithLabelValues("200", "false", ""))

	RecordPage(200, false, "", 120*time.Millisecond, 4096)

	after := testutil.ToFloat64(PageRequestsTotal.WithLabelValues("200", "false", ""))
	if after != before+1 {
		t.Errorf("expected request counter to increment, got %v -> %v", before, after)
	}
}

func TestRecordPage_ErrorStatus(t *testing.T) {
	before := testutil.ToFloat64(PageRequestsTotal.WithLabelValues("error", "false", ""))

	RecordPage(-1, false, "", time.Millisecond, 0)

	after := testutil.ToFloat64(PageRequestsTotal.WithLabelValues("error", "false", ""))
	if after != before+1 {
		t.Errorf("expected error-labeled counter to increment, got %v -> %v", before, after)
	}
}

func TestRecordPage_Blocked(t *testing.T) {
	before := testutil.ToFloat64(PageRequestsTotal.WithLabelValues("200", "true", "Consent"))

	RecordPage(200, true, "Consent", time.Millisecond, 1024)

	after := testutil.ToFloat64(PageRequestsTotal.WithLabelValues("200", "true", "Consent"))
	if after != before+1 {
		t.Errorf("expected blocked counter to increment, got %v -> %v", before, after)
	}
}

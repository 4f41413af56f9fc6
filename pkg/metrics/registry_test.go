package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to collect metric: %v", err)
	}
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	if m.Gauge != nil {
		return m.Gauge.GetValue()
	}
	return 0
}

func TestRegistryRecordsBytes(t *testing.T) {
	r := NewRegistry()
	r.AddBytesRead(100)
	r.AddBytesRead(50)
	r.AddBytesWritten(30)
	r.AddSparseSkipBytes(20)

	if got := counterValue(t, r.bytesReadTotal); got != 150 {
		t.Errorf("bytesReadTotal = %f, want 150", got)
	}
	if got := counterValue(t, r.bytesWrittenTotal); got != 30 {
		t.Errorf("bytesWrittenTotal = %f, want 30", got)
	}
	if got := counterValue(t, r.sparseSkipBytesTotal); got != 20 {
		t.Errorf("sparseSkipBytesTotal = %f, want 20", got)
	}
}

func TestRegistrySetJobsActive(t *testing.T) {
	r := NewRegistry()
	r.SetJobsActive(7)
	if got := counterValue(t, r.jobsActive); got != 7 {
		t.Errorf("jobsActive = %f, want 7", got)
	}
}

func TestRegistryRecordFileProcessed(t *testing.T) {
	r := NewRegistry()
	r.RecordFileProcessed("compress", "ok")
	r.RecordFileProcessed("compress", "ok")
	r.RecordFileProcessed("compress", "error")

	got, err := r.filesProcessedTotal.GetMetricWithLabelValues("compress", "ok")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues failed: %v", err)
	}
	if v := counterValue(t, got); v != 2 {
		t.Errorf("compress/ok count = %f, want 2", v)
	}
}

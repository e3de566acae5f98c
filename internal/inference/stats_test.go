package inference

import (
	"errors"
	"testing"
	"time"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, nil)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLLMStatsCountsFailuresSeparately(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(50*time.Millisecond, errors.New("boom"))
	stats.Record(50*time.Millisecond, errors.New("boom"))
	stats.Record(200*time.Millisecond, nil)

	snap := stats.Snapshot()
	if snap.Failures != 2 {
		t.Fatalf("expected failures=2, got %d", snap.Failures)
	}
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one success at 200ms, got count=%d min=%d", snap.Count, snap.MinMs)
	}
}

func TestLLMStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Now()
	stats := NewLLMStats(10 * time.Minute)
	stats.now = func() time.Time { return now }
	stats.Record(100*time.Millisecond, nil)

	now = now.Add(11 * time.Minute)
	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, nil)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample at 200ms, got count=%d min=%d", snap.Count, snap.MinMs)
	}
}

func TestLLMStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(-10*time.Millisecond, nil)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got count=%d max=%d", snap.Count, snap.MaxMs)
	}
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollectorWith("test", prometheus.NewRegistry())

	c.RecordSkippedLine("field_count")
	c.RecordSkippedLine("field_count")
	c.RecordSkippedLine("bad_time")
	c.RecordCacheLookup("maxWindSpeed", false)
	c.RecordCacheLookup("maxWindSpeed", true)
	c.RecordCacheLookup("maxWindSpeed", true)
	c.RecordInsolationQuery(true)
	c.RecordInsolationQuery(false)
	c.RecordAPIRequest("/api/summary", "GET", "200")

	if got := testutil.ToFloat64(c.DatasetSkippedTotal.WithLabelValues("field_count")); got != 2 {
		t.Errorf("field_count skips = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.DatasetSkippedTotal.WithLabelValues("bad_time")); got != 1 {
		t.Errorf("bad_time skips = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.DatasetQueryCache.WithLabelValues("maxWindSpeed", "hit")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.DatasetQueryCache.WithLabelValues("maxWindSpeed", "miss")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.InsolationQueryTotal.WithLabelValues("not_found")); got != 1 {
		t.Errorf("insolation not_found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.APIRequestsTotal.WithLabelValues("/api/summary", "GET", "200")); got != 1 {
		t.Errorf("api requests = %v, want 1", got)
	}
}

func TestCollector_SeparateRegistries(t *testing.T) {
	// Two collectors with the same namespace must not collide on separate registries.
	NewCollectorWith("dup", prometheus.NewRegistry())
	NewCollectorWith("dup", prometheus.NewRegistry())
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := NewCollectorWith("test", prometheus.NewRegistry())
	timer := c.NewTimer(c.DatasetLoadDuration)
	time.Sleep(time.Millisecond)
	if d := timer.ObserveDuration(); d <= 0 {
		t.Errorf("duration = %v, want > 0", d)
	}
	if n := testutil.CollectAndCount(c.DatasetLoadDuration); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

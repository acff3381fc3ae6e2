package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_RecordAndSnapshot verifies grouping by label and kind.
func TestCollector_RecordAndSnapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Sample{Kind: KindRequest, Label: "GET /clubs", Status: 200, Duration: 10 * time.Millisecond, At: now})
	c.Record(Sample{Kind: KindRequest, Label: "GET /clubs", Status: 200, Duration: 30 * time.Millisecond, At: now})
	c.Record(Sample{Kind: KindQuery, Label: "QueryContext", Duration: 5 * time.Millisecond, At: now})

	s := c.Snapshot(now.Add(-time.Minute), 10)
	if s.TotalRecorded != 3 {
		t.Errorf("TotalRecorded = %d, want 3", s.TotalRecorded)
	}
	if s.Requests != 2 {
		t.Errorf("Requests = %d, want 2", s.Requests)
	}
	if len(s.SlowestRoutes) != 1 {
		t.Fatalf("SlowestRoutes len = %d, want 1", len(s.SlowestRoutes))
	}
	if got := s.SlowestRoutes[0]; got.AvgMs != 20 || got.MaxMs != 30 || got.Count != 2 {
		t.Errorf("route stat = %+v, want avg 20 max 30 count 2", got)
	}
	if len(s.SlowestQueries) != 1 || s.SlowestQueries[0].Label != "QueryContext" {
		t.Errorf("SlowestQueries = %+v", s.SlowestQueries)
	}
}

// TestCollector_RingOverwrites keeps only the newest samples.
func TestCollector_RingOverwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Sample{Kind: KindRequest, Label: "GET /x", Duration: time.Duration(i) * time.Millisecond, At: now})
	}
	if c.Total() != 5 {
		t.Errorf("Total = %d, want 5", c.Total())
	}
	s := c.Snapshot(now.Add(-time.Minute), 10)
	if s.SlowestRoutes[0].Count != 3 {
		t.Errorf("Count = %d, want 3", s.SlowestRoutes[0].Count)
	}
	if s.SlowestRoutes[0].MaxMs != 4 {
		t.Errorf("MaxMs = %v, want 4", s.SlowestRoutes[0].MaxMs)
	}
}

// TestCollector_Percentiles uses 1..100 ms so ranks equal values.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		c.Record(Sample{Kind: KindRequest, Label: "GET /p", Duration: time.Duration(i) * time.Millisecond, At: now})
	}
	s := c.Snapshot(now.Add(-time.Minute), 10)
	if s.RequestP50Ms != 50 {
		t.Errorf("P50 = %v, want 50", s.RequestP50Ms)
	}
	if s.RequestP95Ms != 95 {
		t.Errorf("P95 = %v, want 95", s.RequestP95Ms)
	}
}

// TestCollector_SinceFilter drops samples older than since.
func TestCollector_SinceFilter(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	c.Record(Sample{Kind: KindRequest, Label: "old", Duration: time.Millisecond, At: now.Add(-2 * time.Hour)})
	c.Record(Sample{Kind: KindRequest, Label: "new", Duration: time.Millisecond, At: now})
	s := c.Snapshot(now.Add(-time.Hour), 10)
	if len(s.SlowestRoutes) != 1 || s.SlowestRoutes[0].Label != "new" {
		t.Errorf("SlowestRoutes = %+v, want only new", s.SlowestRoutes)
	}
}

// TestCollector_TopN orders by average and truncates.
func TestCollector_TopN(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	c.Record(Sample{Kind: KindRequest, Label: "fast", Duration: time.Millisecond, At: now})
	c.Record(Sample{Kind: KindRequest, Label: "slow", Duration: 9 * time.Millisecond, At: now})
	c.Record(Sample{Kind: KindRequest, Label: "mid", Duration: 5 * time.Millisecond, At: now})
	s := c.Snapshot(now.Add(-time.Minute), 2)
	if len(s.SlowestRoutes) != 2 || s.SlowestRoutes[0].Label != "slow" || s.SlowestRoutes[1].Label != "mid" {
		t.Errorf("SlowestRoutes = %+v", s.SlowestRoutes)
	}
}

// TestCollector_Concurrent records from many goroutines.
func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Record(Sample{Kind: KindQuery, Label: "ExecContext", At: time.Now()})
			}
		}()
	}
	wg.Wait()
	if c.Total() != 2000 {
		t.Errorf("Total = %d, want 2000", c.Total())
	}
}

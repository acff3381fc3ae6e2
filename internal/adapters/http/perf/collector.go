package perf

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default number of samples retained.
const DefaultRingSize = 5000

// Kind distinguishes HTTP requests from SQL statements.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Sample is one timed operation.
type Sample struct {
	Kind     Kind
	Label    string // "GET /clubs/{id}" or "QueryContext"
	Status   int    // HTTP status; 0 for queries
	Duration time.Duration
	At       time.Time
}

// Collector keeps the most recent samples in a fixed ring.
// Record never blocks on aggregation; Snapshot does the work on read.
type Collector struct {
	mu    sync.Mutex
	ring  []Sample
	next  int
	total atomic.Int64
}

// NewCollector creates a collector retaining up to size samples.
// PRE: none (size <= 0 falls back to DefaultRingSize)
// POST: Returns an empty collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Sample, size)}
}

// Record stores s, overwriting the oldest sample when full.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.ring[c.next] = s
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.total.Add(1)
}

// Total returns the number of samples ever recorded.
func (c *Collector) Total() int64 {
	return c.total.Load()
}

// LabelStat aggregates samples sharing a label.
type LabelStat struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs float64 `json:"max_ms"`
}

// Summary is the aggregated view served on the admin stats endpoint.
type Summary struct {
	TotalRecorded  int64       `json:"total_recorded"`
	Requests       int         `json:"requests"`
	RequestP50Ms   float64     `json:"request_p50_ms"`
	RequestP95Ms   float64     `json:"request_p95_ms"`
	SlowestRoutes  []LabelStat `json:"slowest_routes"`
	SlowestQueries []LabelStat `json:"slowest_queries"`
}

// Snapshot aggregates samples recorded at or after since.
// PRE: topN > 0
// POST: Returns percentiles and the topN slowest labels by average
func (c *Collector) Snapshot(since time.Time, topN int) Summary {
	c.mu.Lock()
	samples := make([]Sample, len(c.ring))
	copy(samples, c.ring)
	c.mu.Unlock()

	var durations []float64
	routes := map[string]*LabelStat{}
	queries := map[string]*LabelStat{}
	for _, s := range samples {
		if s.At.IsZero() || s.At.Before(since) {
			continue
		}
		ms := float64(s.Duration.Microseconds()) / 1000.0
		bucket := queries
		if s.Kind == KindRequest {
			bucket = routes
			durations = append(durations, ms)
		}
		st, ok := bucket[s.Label]
		if !ok {
			st = &LabelStat{Label: s.Label}
			bucket[s.Label] = st
		}
		st.AvgMs = (st.AvgMs*float64(st.Count) + ms) / float64(st.Count+1)
		st.Count++
		if ms > st.MaxMs {
			st.MaxMs = ms
		}
	}

	sort.Float64s(durations)
	return Summary{
		TotalRecorded:  c.Total(),
		Requests:       len(durations),
		RequestP50Ms:   nearestRank(durations, 50),
		RequestP95Ms:   nearestRank(durations, 95),
		SlowestRoutes:  slowest(routes, topN),
		SlowestQueries: slowest(queries, topN),
	}
}

// nearestRank returns the p-th percentile of sorted using the nearest-rank method.
func nearestRank(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

func slowest(stats map[string]*LabelStat, n int) []LabelStat {
	out := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs == out[j].AvgMs {
			return out[i].Label < out[j].Label
		}
		return out[i].AvgMs > out[j].AvgMs
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

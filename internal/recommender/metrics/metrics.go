// Package metrics collects business metrics for the recommendation service.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// RecommenderMetrics tracks query and index counters for the service.
type RecommenderMetrics struct {
	// Query counters.
	recommendTotal    uint64
	recommendErrors   uint64
	recommendTimeouts uint64
	emptyResults      uint64

	// Vector search counters.
	searchTotal    uint64
	searchDuration float64 // seconds
	searchErrors   uint64

	// Index counters.
	titlesIndexed uint64
	indexErrors   uint64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	globalMetrics *RecommenderMetrics
	metricsOnce   sync.Once
)

// Get returns the global metrics instance.
func Get() *RecommenderMetrics {
	metricsOnce.Do(func() {
		globalMetrics = &RecommenderMetrics{
			startTime: time.Now(),
		}
	})
	return globalMetrics
}

// RecordRecommend records one recommendation request. timeout implies an
// error; empty marks a successful request whose result list was empty.
func (m *RecommenderMetrics) RecordRecommend(empty bool, timeout bool, err error) {
	atomic.AddUint64(&m.recommendTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.recommendErrors, 1)
		if timeout {
			atomic.AddUint64(&m.recommendTimeouts, 1)
		}
		return
	}
	if empty {
		atomic.AddUint64(&m.emptyResults, 1)
	}
}

// RecordSearch records one vector search round trip.
func (m *RecommenderMetrics) RecordSearch(duration time.Duration, err error) {
	atomic.AddUint64(&m.searchTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.searchErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.searchDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordIndexing records an index build batch.
func (m *RecommenderMetrics) RecordIndexing(titles int, err error) {
	if err != nil {
		atomic.AddUint64(&m.indexErrors, 1)
		return
	}
	atomic.AddUint64(&m.titlesIndexed, uint64(titles))
}

// Export renders the counters in Prometheus text exposition format.
func (m *RecommenderMetrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	counter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}

	counter("recommend_total", "Total number of recommendation requests.", atomic.LoadUint64(&m.recommendTotal))
	counter("recommend_errors_total", "Number of failed recommendation requests.", atomic.LoadUint64(&m.recommendErrors))
	counter("recommend_timeouts_total", "Number of recommendation requests that timed out.", atomic.LoadUint64(&m.recommendTimeouts))
	counter("recommend_empty_results_total", "Number of successful requests with an empty result list.", atomic.LoadUint64(&m.emptyResults))
	counter("search_total", "Total number of vector searches.", atomic.LoadUint64(&m.searchTotal))
	counter("search_errors_total", "Number of failed vector searches.", atomic.LoadUint64(&m.searchErrors))
	counter("titles_indexed_total", "Total course titles indexed.", atomic.LoadUint64(&m.titlesIndexed))
	counter("index_errors_total", "Number of indexing errors.", atomic.LoadUint64(&m.indexErrors))

	m.durationMu.Lock()
	searchDuration := m.searchDuration
	m.durationMu.Unlock()

	sb.WriteString(fmt.Sprintf("# HELP %s_search_duration_seconds_total Total vector search duration.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_search_duration_seconds_total counter\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_search_duration_seconds_total %.6f\n\n", prefix, searchDuration))

	uptime := time.Since(m.startTime).Seconds()
	sb.WriteString(fmt.Sprintf("# HELP %s_uptime_seconds Service uptime in seconds.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_uptime_seconds gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_uptime_seconds %.2f\n\n", prefix, uptime))

	return sb.String()
}

// Stats returns the current counters for the stats API.
func (m *RecommenderMetrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	searchDuration := m.searchDuration
	m.durationMu.Unlock()

	searchTotal := atomic.LoadUint64(&m.searchTotal)
	avgSearchDuration := 0.0
	if searchTotal > 0 {
		avgSearchDuration = searchDuration / float64(searchTotal)
	}

	return map[string]interface{}{
		"recommend": map[string]interface{}{
			"total":         atomic.LoadUint64(&m.recommendTotal),
			"errors":        atomic.LoadUint64(&m.recommendErrors),
			"timeouts":      atomic.LoadUint64(&m.recommendTimeouts),
			"empty_results": atomic.LoadUint64(&m.emptyResults),
		},
		"search": map[string]interface{}{
			"total":               searchTotal,
			"total_duration_secs": searchDuration,
			"avg_duration_secs":   avgSearchDuration,
			"errors":              atomic.LoadUint64(&m.searchErrors),
		},
		"indexing": map[string]interface{}{
			"titles_indexed": atomic.LoadUint64(&m.titlesIndexed),
			"errors":         atomic.LoadUint64(&m.indexErrors),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset clears all counters. Tests only.
func (m *RecommenderMetrics) Reset() {
	atomic.StoreUint64(&m.recommendTotal, 0)
	atomic.StoreUint64(&m.recommendErrors, 0)
	atomic.StoreUint64(&m.recommendTimeouts, 0)
	atomic.StoreUint64(&m.emptyResults, 0)
	atomic.StoreUint64(&m.searchTotal, 0)
	atomic.StoreUint64(&m.searchErrors, 0)
	atomic.StoreUint64(&m.titlesIndexed, 0)
	atomic.StoreUint64(&m.indexErrors, 0)

	m.durationMu.Lock()
	m.searchDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}

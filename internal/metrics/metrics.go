package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	queriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chat_reply_engine",
		Name:      "queries_total",
		Help:      "Total number of queries answered",
	})
	unmatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chat_reply_engine",
		Name:      "queries_unmatched_total",
		Help:      "Queries whose selected request did not contain the query as a subsequence",
	})
	queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chat_reply_engine",
		Name:      "query_duration_seconds",
		Help:      "Histogram of time spent scoring the corpus for one query",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs up to ~1.6s
	})
	bestScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chat_reply_engine",
		Name:      "best_score",
		Help:      "Score of the selected corpus entry",
		Buckets:   []float64{0, 1, 10, 100, 500, 1000, 5000, 10000},
	})
	corpusEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat_reply_engine",
		Name:      "corpus_entries",
		Help:      "Number of request/responses entries being served",
	})
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_reply_engine",
		Name:      "http_requests_total",
		Help:      "HTTP requests by path and status code",
	}, []string{"path", "code"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(queriesTotal, unmatchedTotal, queryDuration, bestScore, corpusEntries, httpRequests)
	})
}

// ObserveQuery records one answered query.
func ObserveQuery(d time.Duration, score int, matched bool) {
	queriesTotal.Inc()
	if !matched {
		unmatchedTotal.Inc()
	}
	queryDuration.Observe(d.Seconds())
	bestScore.Observe(float64(score))
}

func SetCorpusEntries(n int) { corpusEntries.Set(float64(n)) }

func IncHTTPRequest(path, code string) { httpRequests.WithLabelValues(path, code).Inc() }

package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Balance gateway instrumentation. The interesting operational questions are
// how often the remote spreadsheet is actually hit versus served from cache,
// and how hard the retry policy is working.
var (
	BalanceRemoteFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lupanes_balance_remote_fetches_total",
		Help: "Remote spreadsheet fetch attempts (each retry counts).",
	})
	BalanceFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lupanes_balance_fetch_failures_total",
		Help: "Remote spreadsheet fetches that failed after exhausting retries.",
	})
	BalanceCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lupanes_balance_cache_hits_total",
		Help: "Balance lookups served from the Redis cache.",
	})
	BalanceCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lupanes_balance_cache_misses_total",
		Help: "Balance lookups that had to warm the cache from the spreadsheet.",
	})
)

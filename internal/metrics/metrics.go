package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters. Instances are registered once at
// startup and shared read-only across units of work.
type Metrics struct {
	Discovered          *prometheus.CounterVec
	Processed           *prometheus.CounterVec
	SummarizerFallbacks prometheus.Counter
	ClaimConflicts      prometheus.Counter
	CleanupDeleted      prometheus.Counter
}

// New registers the pipeline counters with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Discovered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsharvester_candidates_discovered_total",
			Help: "Candidate URLs discovered, by site.",
		}, []string{"site"}),
		Processed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsharvester_articles_processed_total",
			Help: "Articles processed to a terminal state, by outcome.",
		}, []string{"outcome"}),
		SummarizerFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsharvester_summarizer_fallbacks_total",
			Help: "Times the primary summarization model failed over.",
		}),
		ClaimConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsharvester_claim_conflicts_total",
			Help: "Claims lost to a concurrent processor.",
		}),
		CleanupDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsharvester_cleanup_deleted_total",
			Help: "Permanently failed records removed by the cleanup pass.",
		}),
	}
}

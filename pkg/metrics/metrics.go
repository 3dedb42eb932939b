package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "securedocs", Name: "documents_created_total", Help: "Number of documents registered."},
	)
	SignaturesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "securedocs", Name: "signatures_recorded_total", Help: "Number of signatures committed."},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "securedocs", Name: "ledger_submissions_total", Help: "Ledger submissions by operation and outcome."},
		[]string{"op", "outcome"},
	)
	ContentUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "securedocs", Name: "content_uploads_total", Help: "Content store uploads by outcome."},
		[]string{"outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "securedocs", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "securedocs", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsCreated)
	reg.MustRegister(SignaturesRecorded)
	reg.MustRegister(Submissions)
	reg.MustRegister(ContentUploads)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClaimsSubmitted counts claim intakes by assigned priority.
var ClaimsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claims_submitted_total",
	Help: "Claims accepted at intake, labeled by assigned priority tier.",
}, []string{"priority"})

// ClaimsAdjudicated counts decisions by outcome.
var ClaimsAdjudicated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claims_adjudicated_total",
	Help: "Adjudication decisions applied, labeled by outcome.",
}, []string{"decision"})

// TriageOutcomes counts classifier results by how they were produced.
var TriageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claims_triage_outcomes_total",
	Help: "Priority classification outcomes: oracle, disabled, unconfigured, timeout, error, malformed.",
}, []string{"outcome"})

// TriageDuration observes advisory round-trip time in seconds.
var TriageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "claims_triage_duration_seconds",
	Help:    "Latency of the external priority advisory call.",
	Buckets: prometheus.DefBuckets,
})

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics carries the ledger counters exported on /metrics.
type Metrics struct {
	ProposalsCreated  prometheus.Counter
	VotesCast         *prometheus.CounterVec
	ProposalsResolved *prometheus.CounterVec
	NoticesSent       prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProposalsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parkpulse",
			Subsystem: "ledger",
			Name:      "proposals_created_total",
			Help:      "Proposals appended to the ledger.",
		}),
		VotesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parkpulse",
			Subsystem: "ledger",
			Name:      "votes_cast_total",
			Help:      "Ballots recorded, by choice.",
		}, []string{"choice"}),
		ProposalsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parkpulse",
			Subsystem: "ledger",
			Name:      "proposals_resolved_total",
			Help:      "Proposals moved to a terminal status, by outcome.",
		}, []string{"status"}),
		NoticesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parkpulse",
			Subsystem: "ledger",
			Name:      "proposal_notices_sent_total",
			Help:      "Proposal creation notifications delivered.",
		}),
	}
}

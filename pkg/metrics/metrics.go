package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "claimsaver", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "claimsaver", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ClaimsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "claimsaver", Name: "claims_submitted_total", Help: "Number of submitted claims by priority."},
		[]string{"priority"},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "claimsaver", Name: "webhook_events_total", Help: "Number of identity webhook events by type and outcome."},
		[]string{"type", "outcome"},
	)
	SharesSent = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "claimsaver", Name: "document_shares_sent_total", Help: "Number of document share emails sent."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ClaimsSubmitted)
	reg.MustRegister(WebhookEvents)
	reg.MustRegister(SharesSent)
}

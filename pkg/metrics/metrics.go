package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kiganjani", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kiganjani", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	SMSSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kiganjani", Name: "sms_sent_total", Help: "Number of SMS messages handed to the gateway, by kind."},
		[]string{"kind"},
	)
	SMSFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kiganjani", Name: "sms_failed_total", Help: "Number of SMS gateway failures, by kind."},
		[]string{"kind"},
	)
	LayoutsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kiganjani", Name: "layouts_generated_total", Help: "Number of floor layouts generated, by layout type."},
		[]string{"layout"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(SMSSent)
	reg.MustRegister(SMSFailed)
	reg.MustRegister(LayoutsGenerated)
}

package consent

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	TransitionsTotal *prometheus.CounterVec
	ExpiredTotal     prometheus.Counter
	SweepErrors      prometheus.Counter
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consent_transitions_total",
				Help: "Total consent lifecycle actions by outcome.",
			},
			[]string{"action", "result"},
		),
		ExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "consent_expired_total",
				Help: "Total consents moved to expired by the sweep or by a new grant.",
			},
		),
		SweepErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "consent_expiry_sweep_errors_total",
				Help: "Total consents the expiry sweep failed to update.",
			},
		),
	}

	registry.MustRegister(m.TransitionsTotal, m.ExpiredTotal, m.SweepErrors)
	return m
}

func (m *Metrics) IncTransition(action string, err error) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(action, resultLabel(err)).Inc()
}

func (m *Metrics) IncExpired() {
	if m == nil {
		return
	}
	m.ExpiredTotal.Inc()
}

func (m *Metrics) IncSweepError() {
	if m == nil {
		return
	}
	m.SweepErrors.Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAction):
		return "invalid"
	case errors.Is(err, ErrConsentNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyRevoked), errors.Is(err, ErrAlreadyWithdrawn), errors.Is(err, ErrNotGranted),
		errors.Is(err, ErrDuplicateGrant), errors.Is(err, ErrCannotDeleteActive):
		return "rejected"
	case errors.Is(err, ErrConcurrentUpdate):
		return "conflict"
	default:
		return "error"
	}
}

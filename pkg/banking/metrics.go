package banking

import (
	"errors"

	"github.com/chris/ethicalbank/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	AccountsOpened    prometheus.Counter
	AccountsClosed    prometheus.Counter
	PostingsTotal     *prometheus.CounterVec
	TransfersTotal    *prometheus.CounterVec
	OptimisticRetries prometheus.Counter
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		AccountsOpened: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "banking_accounts_opened_total",
				Help: "Total accounts opened.",
			},
		),
		AccountsClosed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "banking_accounts_closed_total",
				Help: "Total accounts closed.",
			},
		),
		PostingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_postings_total",
				Help: "Total credit and debit postings by outcome.",
			},
			[]string{"direction", "result"},
		),
		TransfersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_transfers_total",
				Help: "Total transfers by outcome.",
			},
			[]string{"result"},
		),
		OptimisticRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "banking_optimistic_lock_retries_total",
				Help: "Total retries caused by a concurrent account update.",
			},
		),
	}

	registry.MustRegister(
		m.AccountsOpened,
		m.AccountsClosed,
		m.PostingsTotal,
		m.TransfersTotal,
		m.OptimisticRetries,
	)
	return m
}

func (m *Metrics) IncAccountOpened() {
	if m == nil {
		return
	}
	m.AccountsOpened.Inc()
}

func (m *Metrics) IncAccountClosed() {
	if m == nil {
		return
	}
	m.AccountsClosed.Inc()
}

func (m *Metrics) IncPosting(direction string, err error) {
	if m == nil {
		return
	}
	m.PostingsTotal.WithLabelValues(directionLabel(direction), resultLabel(err)).Inc()
}

// directionLabel maps anything but a real direction to "invalid" so callers cannot mint series.
func directionLabel(direction string) string {
	switch models.Direction(direction) {
	case models.DEBIT, models.CREDIT:
		return direction
	default:
		return "invalid"
	}
}

func (m *Metrics) IncTransfer(err error) {
	if m == nil {
		return
	}
	m.TransfersTotal.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.OptimisticRetries.Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSameAccount), errors.Is(err, ErrCurrencyMismatch):
		return "invalid"
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAccountNotActive):
		return "not_active"
	case errors.Is(err, ErrConcurrentUpdate):
		return "conflict"
	default:
		return "error"
	}
}

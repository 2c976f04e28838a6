// Package metrics exposes lifecycle activity as prometheus series.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domainErr "github.com/Spok95/subpass/internal/domain/errors"
	"github.com/Spok95/subpass/internal/domain/events"
)

const namespace = "subpass"

type Metrics struct {
	Purchases  *prometheus.CounterVec
	SeatGrants *prometheus.CounterVec
	Transfers  prometheus.Counter
	Migrations prometheus.Counter
	Failures   *prometheus.CounterVec
	Paused     prometheus.Gauge
	ByState    *prometheus.GaugeVec
}

// New registers every series on reg. Pass prometheus.DefaultRegisterer to
// serve them from promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Purchases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Subscriptions bought, by class.",
		}, []string{"class"}),
		SeatGrants: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seat_grants_total",
			Help:      "Users added to an allowed list, by class.",
		}, []string{"class"}),
		Transfers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Token moves between holders, mints excluded.",
		}),
		Migrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "Token moves between distinct holders that reconciled subscription state.",
		}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Rejected or failed operations, by operation and reason.",
		}, []string{"op", "reason"}),
		Paused: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paused",
			Help:      "1 while the service is paused.",
		}),
		ByState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions",
			Help:      "Subscriptions by state (active, expired).",
		}, []string{"state"}),
	}
}

// Committed implements lifecycle.Observer.
func (m *Metrics) Committed(_ string, evs []events.Event) {
	for _, ev := range evs {
		switch p := ev.Payload.(type) {
		case events.SubscriptionPurchased:
			m.Purchases.WithLabelValues(classLabel(p.ClassID)).Inc()
		case events.UserAddedToAllowedList:
			m.SeatGrants.WithLabelValues(classLabel(p.ClassID)).Inc()
		case events.TokenTransferred:
			if p.From.IsZero() {
				continue
			}
			m.Transfers.Inc()
			if p.From != p.To {
				m.Migrations.Inc()
			}
		case events.Paused:
			m.Paused.Set(1)
		case events.Unpaused:
			m.Paused.Set(0)
		}
	}
}

// Failed implements lifecycle.Observer.
func (m *Metrics) Failed(op string, err error) {
	m.Failures.WithLabelValues(op, domainErr.Reason(err)).Inc()
}

// SetSubscriptionCounts is called by the expiry scan.
func (m *Metrics) SetSubscriptionCounts(active, expired int) {
	m.ByState.WithLabelValues("active").Set(float64(active))
	m.ByState.WithLabelValues("expired").Set(float64(expired))
}

func (m *Metrics) SetPaused(paused bool) {
	if paused {
		m.Paused.Set(1)
		return
	}
	m.Paused.Set(0)
}

func classLabel(id uint64) string { return strconv.FormatUint(id, 10) }

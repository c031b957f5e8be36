package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "evrlink_mirror"

// Operation outcomes
const (
	OutcomeConfirmed     = "confirmed"
	OutcomeProcessing    = "processing"
	OutcomeRejected      = "rejected"
	OutcomeFailed        = "failed"
	OutcomeUnknown       = "unknown"
	OutcomeEventNotFound = "event_not_found"
)

// Projection results
const (
	ProjectionApplied = "applied"
	ProjectionStale   = "stale"
	ProjectionError   = "error"
)

// Metrics holds the Prometheus collectors of the mirror services
type Metrics struct {
	operations        *prometheus.CounterVec
	confirmation      *prometheus.HistogramVec
	eventNotFound     *prometheus.CounterVec
	pendingOperations *prometheus.GaugeVec
	projections       *prometheus.CounterVec
	heals             *prometheus.CounterVec
	sweepCycles       prometheus.Counter
	eventsPublished   *prometheus.CounterVec
	bridgeMessages    *prometheus.CounterVec
}

// New registers every collector with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "marketplace operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		confirmation: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "confirmation_seconds",
				Help:      "time from submission to ledger confirmation",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 15, 30, 60, 120},
			},
			[]string{"operation"},
		),
		eventNotFound: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_not_found_total",
				Help:      "confirmed transactions whose receipt lacked the expected event",
			},
			[]string{"operation"},
		),
		pendingOperations: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_operations",
				Help:      "pending operation markers by status",
			},
			[]string{"status"},
		),
		projections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "projections_total",
				Help:      "ledger changes applied to the mirror",
			},
			[]string{"source", "result"},
		),
		heals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweeper_heals_total",
				Help:      "mirror rows healed from ledger snapshots",
			},
			[]string{"entity", "reason"},
		),
		sweepCycles: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweeper_cycles_total",
				Help:      "completed reconciliation sweep cycles",
			},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "ledger events published to the message bus",
			},
			[]string{"kind"},
		),
		bridgeMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_messages_total",
				Help:      "message bus deliveries handled by the bridge",
			},
			[]string{"result"},
		),
	}
}

// NewNop returns metrics registered with a private registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveOperation counts an operation outcome
func (m *Metrics) ObserveOperation(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveConfirmation records the confirmation latency of an operation
func (m *Metrics) ObserveConfirmation(operation string, d time.Duration) {
	m.confirmation.WithLabelValues(operation).Observe(d.Seconds())
}

// EventNotFound counts a receipt without the expected event
func (m *Metrics) EventNotFound(operation string) {
	m.eventNotFound.WithLabelValues(operation).Inc()
}

// SetPendingOperations sets the number of markers in a status
func (m *Metrics) SetPendingOperations(status string, count int64) {
	m.pendingOperations.WithLabelValues(status).Set(float64(count))
}

// ObserveProjection counts a mirror write by its source component
func (m *Metrics) ObserveProjection(source, result string) {
	m.projections.WithLabelValues(source, result).Inc()
}

// Healed counts a snapshot heal
func (m *Metrics) Healed(entity, reason string) {
	m.heals.WithLabelValues(entity, reason).Inc()
}

// SweepCompleted counts a finished sweep cycle
func (m *Metrics) SweepCompleted() {
	m.sweepCycles.Inc()
}

// EventPublished counts a published ledger event
func (m *Metrics) EventPublished(kind string) {
	m.eventsPublished.WithLabelValues(kind).Inc()
}

// BridgeMessage counts a bridge delivery by result (ack, nak, term)
func (m *Metrics) BridgeMessage(result string) {
	m.bridgeMessages.WithLabelValues(result).Inc()
}

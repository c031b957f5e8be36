package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOperation("buyGiftCard", OutcomeConfirmed)
	m.ObserveOperation("buyGiftCard", OutcomeConfirmed)
	m.ObserveOperation("buyGiftCard", OutcomeUnknown)
	m.EventNotFound("claimGiftCard")
	m.SetPendingOperations("unknown", 3)
	m.ObserveConfirmation("buyGiftCard", 1500*time.Millisecond)
	m.Healed("gift_card", "event_missing")
	m.SweepCompleted()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.operations.WithLabelValues("buyGiftCard", OutcomeConfirmed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("buyGiftCard", OutcomeUnknown)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.eventNotFound.WithLabelValues("claimGiftCard")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.pendingOperations.WithLabelValues("unknown")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.heals.WithLabelValues("gift_card", "event_missing")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sweepCycles))
	assert.Equal(t, 1, testutil.CollectAndCount(m.confirmation))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewNop_Isolated(t *testing.T) {
	// Two instances must not collide on registration
	a := NewNop()
	b := NewNop()
	a.SweepCompleted()
	assert.Equal(t, float64(0), testutil.ToFloat64(b.sweepCycles))
}

package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/doublets"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "," + lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	pc, err := NewPrometheusCollector(reg, "")
	require.NoError(t, err)

	links, err := doublets.New[uint64](doublets.WithMetricsCollector(pc))
	require.NoError(t, err)
	defer links.Close()

	id, err := links.Create()
	require.NoError(t, err)
	_, err = links.Update(id, 0, 0)
	require.NoError(t, err)
	_, err = links.Delete(42)
	require.Error(t, err)
	links.CountAll()
	_, err = links.EachAll(func(doublets.Link[uint64]) (doublets.Control, error) {
		return doublets.Continue, nil
	})
	require.NoError(t, err)

	got := gather(t, reg)
	assert.Equal(t, 1.0, got["doublets_operations_total,op=create,status=success"])
	assert.Equal(t, 1.0, got["doublets_operations_total,op=update,status=success"])
	assert.Equal(t, 1.0, got["doublets_operations_total,op=delete,status=error"])
	assert.Equal(t, 1.0, got["doublets_operations_total,op=count,status=success"])
	assert.Equal(t, 1.0, got["doublets_each_visited_total"])
	assert.Equal(t, 1.0, got["doublets_operation_latency_seconds,op=each"])
	assert.GreaterOrEqual(t, got["doublets_grow_total"], 1.0)
	assert.Positive(t, got["doublets_capacity_bytes"])
}

func TestPrometheusCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusCollector(reg, "links")
	require.NoError(t, err)

	_, err = NewPrometheusCollector(reg, "links")
	require.Error(t, err)
}

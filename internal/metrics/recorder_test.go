package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecorderRecordsSelection(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec, err := NewRecorder(provider.Meter(instrumentationName))
	require.NoError(t, err)

	ctx := context.Background()
	rec.RecordSelection(ctx, 3, 2*time.Millisecond, map[string]int{"low-relevance": 2, "overused": 0})
	rec.RecordSelection(ctx, 1, time.Millisecond, nil)

	got := collect(t, reader)

	selections, ok := got["threadkeeper.selections.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "selections counter missing")
	require.Len(t, selections.DataPoints, 1)
	assert.Equal(t, int64(2), selections.DataPoints[0].Value)

	selected, ok := got["threadkeeper.obligations.selected"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "selected counter missing")
	require.Len(t, selected.DataPoints, 1)
	assert.Equal(t, int64(4), selected.DataPoints[0].Value)

	filtered, ok := got["threadkeeper.obligations.filtered"].Data.(metricdata.Sum[int64])
	require.True(t, ok, "filtered counter missing")
	require.Len(t, filtered.DataPoints, 1)
	assert.Equal(t, int64(2), filtered.DataPoints[0].Value)
	reason, ok := filtered.DataPoints[0].Attributes.Value(attribute.Key("reason"))
	require.True(t, ok)
	assert.Equal(t, "low-relevance", reason.AsString())

	duration, ok := got["threadkeeper.selection.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "duration histogram missing")
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(2), duration.DataPoints[0].Count)
	assert.InDelta(t, 0.003, duration.DataPoints[0].Sum, 1e-9)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.RecordSelection(context.Background(), 1, time.Second, map[string]int{"overused": 1})
	})
}

func TestNewRecorderFallsBackToGlobalMeter(t *testing.T) {
	rec, err := NewRecorder(nil)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

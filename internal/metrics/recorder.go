package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/kingrea/threadkeeper"

// Recorder mirrors selection activity into OpenTelemetry instruments. A nil
// *Recorder is a valid no-op.
type Recorder struct {
	selections metric.Int64Counter
	selected   metric.Int64Counter
	filtered   metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewRecorder creates the instruments on the given meter. A nil meter falls
// back to the global provider.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	r := &Recorder{}
	var err error
	r.selections, err = meter.Int64Counter("threadkeeper.selections.total",
		metric.WithDescription("Selection passes run"),
		metric.WithUnit("{selection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: selections counter: %w", err)
	}
	r.selected, err = meter.Int64Counter("threadkeeper.obligations.selected",
		metric.WithDescription("Obligations surfaced across selections"),
		metric.WithUnit("{obligation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: selected counter: %w", err)
	}
	r.filtered, err = meter.Int64Counter("threadkeeper.obligations.filtered",
		metric.WithDescription("Candidates dropped by the contextual filter"),
		metric.WithUnit("{obligation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: filtered counter: %w", err)
	}
	r.duration, err = meter.Float64Histogram("threadkeeper.selection.duration",
		metric.WithDescription("Wall-clock time of a selection pass"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: duration histogram: %w", err)
	}
	return r, nil
}

// RecordSelection records one pass: how many obligations were surfaced, how
// long it took, and how many candidates were dropped per reason.
func (r *Recorder) RecordSelection(ctx context.Context, selected int, elapsed time.Duration, filtered map[string]int) {
	if r == nil {
		return
	}
	r.selections.Add(ctx, 1)
	r.selected.Add(ctx, int64(selected))
	r.duration.Record(ctx, elapsed.Seconds())
	for reason, count := range filtered {
		if count <= 0 {
			continue
		}
		r.filtered.Add(ctx, int64(count), metric.WithAttributes(attribute.String("reason", reason)))
	}
}

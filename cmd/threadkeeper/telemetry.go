package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kingrea/threadkeeper/internal/metrics"
)

// telemetry keeps selection instruments in process so -telemetry can print
// them when the command finishes.
type telemetry struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	recorder *metrics.Recorder
}

func newTelemetry() (*telemetry, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder, err := metrics.NewRecorder(provider.Meter("threadkeeper/cli"))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}
	return &telemetry{reader: reader, provider: provider, recorder: recorder}, nil
}

func (t *telemetry) shutdown() {
	_ = t.provider.Shutdown(context.Background())
}

func (t *telemetry) report(w io.Writer) error {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(context.Background(), &rm); err != nil {
		return fmt.Errorf("collect telemetry: %w", err)
	}
	var lines []string
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				lines = append(lines, fmt.Sprintf("%s %d", m.Name, total))
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, fmt.Sprintf("%s count=%d sum=%.6fs", m.Name, dp.Count, dp.Sum))
				}
			}
		}
	}
	sort.Strings(lines)
	fmt.Fprintln(w, titleStyle.Render("Telemetry"))
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

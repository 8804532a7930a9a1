// Package metrics holds the OpenTelemetry meter provider setup shared by the
// HTTP server and the batch orchestrator. Instruments are exported through the
// Prometheus default registerer and served by promhttp.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides histogram buckets in seconds. Browser navigations
// take seconds rather than milliseconds, so the upper range reaches a minute.
var DefaultBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 45, 60} //nolint: gochecknoglobals

// NewMeterProvider creates a meter provider whose instruments are exported
// through registerer. A nil registerer means prometheus.DefaultRegisterer.
func NewMeterProvider(registerer prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	exp, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

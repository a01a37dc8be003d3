package license

import (
	"go.opentelemetry.io/otel/metric"
)

const (
	TracerName = "licseal/license"
	MeterName  = "licseal/license"
)

// Metrics holds the license-core OpenTelemetry instruments.
type Metrics struct {
	DocumentsBuilt     metric.Int64Counter
	BuildDuration      metric.Float64Histogram
	FieldRejections    metric.Int64Counter
	ValidationRuns     metric.Int64Counter
	ValidationFailures metric.Int64Counter
	ProcessorRuns      metric.Int64Counter
	ProcessorFailures  metric.Int64Counter
}

// newMetrics creates all license-core metrics.
func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.DocumentsBuilt, err = meter.Int64Counter("license.documents_built",
		metric.WithDescription("Number of documents constructed from schemas")); err != nil {
		return nil, err
	}
	if m.BuildDuration, err = meter.Float64Histogram("license.build_duration_ms",
		metric.WithDescription("Document construction duration in milliseconds")); err != nil {
		return nil, err
	}
	if m.FieldRejections, err = meter.Int64Counter("license.field_rejections",
		metric.WithDescription("Number of field writes rejected by validators")); err != nil {
		return nil, err
	}
	if m.ValidationRuns, err = meter.Int64Counter("license.validation_runs",
		metric.WithDescription("Number of whole-document schema validations")); err != nil {
		return nil, err
	}
	if m.ValidationFailures, err = meter.Int64Counter("license.validation_failures",
		metric.WithDescription("Number of nonconformant validation outcomes")); err != nil {
		return nil, err
	}
	if m.ProcessorRuns, err = meter.Int64Counter("license.processor_runs",
		metric.WithDescription("Number of field processor executions")); err != nil {
		return nil, err
	}
	if m.ProcessorFailures, err = meter.Int64Counter("license.processor_failures",
		metric.WithDescription("Number of failed field processor executions")); err != nil {
		return nil, err
	}
	return m, nil
}

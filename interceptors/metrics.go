package interceptors

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/junioryono/saber"
)

// Metric names recorded by Metrics.
const (
	ResolutionsMetric     = "saber_resolutions_total"
	ProvideFailuresMetric = "saber_provide_failures_total"
	ProvideDurationMetric = "saber_provide_duration_seconds"
)

// OutcomeAttribute tells found resolutions from missing and failed ones.
const OutcomeAttribute = attribute.Key("outcome")

// Resolution outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type resolutionMetrics struct {
	resolutions     metric.Int64Counter
	provideFailures metric.Int64Counter
	provideDuration metric.Float64Histogram
}

// Metrics returns an interceptor that counts resolutions by outcome and
// measures the duration of every Provide call with instruments from meter.
func Metrics(meter metric.Meter) (saber.ProviderInterceptor, error) {
	resolutions, err := meter.Int64Counter(
		ResolutionsMetric,
		metric.WithDescription("Provider resolutions by outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, err
	}

	provideFailures, err := meter.Int64Counter(
		ProvideFailuresMetric,
		metric.WithDescription("Provide calls that returned an error"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	provideDuration, err := meter.Float64Histogram(
		ProvideDurationMetric,
		metric.WithDescription("Duration of Provide calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m := &resolutionMetrics{
		resolutions:     resolutions,
		provideFailures: provideFailures,
		provideDuration: provideDuration,
	}
	return saber.InterceptorFunc(m.intercept), nil
}

func (m *resolutionMetrics) intercept(chain saber.Chain, key saber.Key) (saber.Provider, error) {
	ctx := context.Background()
	p, err := chain.Proceed(key)
	if err != nil {
		outcome := OutcomeError
		if saber.IsNotFound(err) {
			outcome = OutcomeNotFound
		}
		m.resolutions.Add(ctx, 1, metric.WithAttributes(OutcomeAttribute.String(outcome)))
		return nil, err
	}

	m.resolutions.Add(ctx, 1, metric.WithAttributes(OutcomeAttribute.String(OutcomeFound)))
	return &meteredProvider{next: p, metrics: m, key: KeyAttribute.String(key.String())}, nil
}

type meteredProvider struct {
	next    saber.Provider
	metrics *resolutionMetrics
	key     attribute.KeyValue
}

func (p *meteredProvider) Provide() (any, error) {
	ctx := context.Background()
	start := time.Now()
	v, err := p.next.Provide()
	p.metrics.provideDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(p.key))
	if err != nil {
		p.metrics.provideFailures.Add(ctx, 1, metric.WithAttributes(p.key))
	}
	return v, err
}

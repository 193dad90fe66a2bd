package interceptors

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/junioryono/saber"
)

// SpanName is the name of the span opened around each Provide call.
const SpanName = "saber.Provide"

// Span attribute keys.
const (
	KeyAttribute      = attribute.Key("saber.key")
	InjectorAttribute = attribute.Key("saber.injector")
)

// Tracing returns an interceptor that runs every Provide call of the resolved
// provider inside a span of tracer. Spans are roots: Provide carries no
// context to parent them.
func Tracing(tracer trace.Tracer) saber.ProviderInterceptor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("saber")
	}

	return saber.InterceptorFunc(func(chain saber.Chain, key saber.Key) (saber.Provider, error) {
		p, err := chain.Proceed(key)
		if err != nil {
			return nil, err
		}
		return &tracingProvider{
			next:   p,
			tracer: tracer,
			attrs: []attribute.KeyValue{
				KeyAttribute.String(key.String()),
				InjectorAttribute.String(chain.Injector().ID()),
			},
		}, nil
	})
}

type tracingProvider struct {
	next   saber.Provider
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

func (p *tracingProvider) Provide() (any, error) {
	_, span := p.tracer.Start(context.Background(), SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(p.attrs...),
	)
	defer span.End()

	v, err := p.next.Provide()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return v, nil
}

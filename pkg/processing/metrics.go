package processing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/irtelemetry/log"
)

type metrics struct {
	cycles   metric.Int64Counter
	frames   metric.Int64Counter
	misses   metric.Int64Counter
	tornRead metric.Int64Counter
	rebuilds metric.Int64Counter
	failures metric.Int64Counter
}

func newMetrics(l *log.Logger) *metrics {
	meter := otel.GetMeterProvider().Meter("irt.processing")
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"))
		if err != nil {
			l.Error("failed to register metric", log.String("metric", name), log.ErrorField(err))
		}
		return c
	}
	return &metrics{
		cycles:   counter("irt.poll.cycles", "Number of poll cycles"),
		frames:   counter("irt.poll.frames", "Number of produced frames"),
		misses:   counter("irt.poll.misses", "Number of cycles without frame"),
		tornRead: counter("irt.poll.torn_reads", "Number of frames discarded due to torn reads"),
		rebuilds: counter("irt.catalog.rebuilds", "Number of catalog rebuilds"),
		failures: counter("irt.poll.errors", "Number of cycles that failed with an error"),
	}
}

func add(ctx context.Context, c metric.Int64Counter, opts ...metric.AddOption) {
	if c != nil {
		c.Add(ctx, 1, opts...)
	}
}

func (m *metrics) cycle(ctx context.Context)   { add(ctx, m.cycles) }
func (m *metrics) frame(ctx context.Context)   { add(ctx, m.frames) }
func (m *metrics) torn(ctx context.Context)    { add(ctx, m.tornRead) }
func (m *metrics) rebuild(ctx context.Context) { add(ctx, m.rebuilds) }
func (m *metrics) failed(ctx context.Context)  { add(ctx, m.failures) }

func (m *metrics) miss(ctx context.Context, reason string) {
	add(ctx, m.misses, metric.WithAttributes(attribute.String("reason", reason)))
}

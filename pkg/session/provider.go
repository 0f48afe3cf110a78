package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/utils/cache"
	"github.com/mpapenbr/irtelemetry/pkg/utils/cache/loadercache"
)

// Info is the parsed session document together with the derived roster
type Info struct {
	Key    irsdk.DocKey
	Doc    *Document
	Roster []RosterEntry
}

// Provider parses the session document of a header only when its location
// or update counter changed.
type Provider struct {
	cache  cache.Cache[cacheKey, Info]
	tracer trace.Tracer
	l      *log.Logger
}

type cacheKey struct {
	generation uuid.UUID
	doc        irsdk.DocKey
}

type headerCtxKey struct{}

type ProviderOption func(*Provider)

func WithLogger(l *log.Logger) ProviderOption {
	return func(p *Provider) {
		p.l = l
	}
}

func WithTracer(tracer trace.Tracer) ProviderOption {
	return func(p *Provider) {
		p.tracer = tracer
	}
}

func NewProvider(opts ...ProviderOption) *Provider {
	ret := &Provider{
		l: log.Default().Named("session"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("irtelemetry")
	}
	ret.cache = loadercache.New(
		loadercache.WithLoader(ret.load),
		loadercache.WithExpiration[cacheKey, Info](0),
		loadercache.WithMaxEntries[cacheKey, Info](4),
		loadercache.WithLogger[cacheKey, Info](ret.l.Named("cache")),
	)
	return ret
}

// Info returns the session info for the header. generation identifies the
// connection generation (see irsdk.Catalog.Generation).
func (p *Provider) Info(ctx context.Context, generation uuid.UUID, h irsdk.HeaderView) (*Info, error) {
	key := cacheKey{generation: generation, doc: irsdk.DocKeyOf(h)}
	return p.cache.Get(context.WithValue(ctx, headerCtxKey{}, h), key)
}

// Reset drops all cached documents
func (p *Provider) Reset(ctx context.Context) {
	p.cache.InvalidateAll(ctx)
}

func (p *Provider) load(ctx context.Context, key cacheKey) (*Info, error) {
	h, ok := ctx.Value(headerCtxKey{}).(irsdk.HeaderView)
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	_, span := p.tracer.Start(ctx, "session.parse",
		trace.WithAttributes(
			attribute.Int("session.update", int(key.doc.Update)),
			attribute.Int("session.len", int(key.doc.Len)),
		))
	defer span.End()

	start := time.Now()
	raw, err := irsdk.SessionDocument(h)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract")
		return nil, err
	}
	ret := &Info{Key: key.doc, Doc: &Document{}}
	doc, err := Parse(raw)
	if err != nil {
		// keep the empty document for this key, it is not parsed again
		span.RecordError(err)
		p.l.Warn("could not parse session document", log.ErrorField(err))
	} else {
		ret.Doc = doc
	}
	ret.Roster = ret.Doc.Roster()
	span.SetAttributes(attribute.Int("session.roster", len(ret.Roster)))
	p.l.Debug("session document parsed",
		log.Int32("update", key.doc.Update),
		log.Int("roster", len(ret.Roster)),
		log.Duration("duration", time.Since(start)))
	return ret, nil
}

// Package processing runs one read cycle against the shared memory region
// and produces a Frame of timing and telemetry data.
package processing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/processing/laptiming"
	"github.com/mpapenbr/irtelemetry/pkg/processing/telemetry"
	"github.com/mpapenbr/irtelemetry/pkg/session"
)

// Frame is the result of a successful cycle. All data was read from the
// same buffer slot at the same tick.
type Frame struct {
	Generation    uuid.UUID        `json:"generation"`
	Tick          int32            `json:"tick"`
	Slot          int              `json:"slot"`
	SessionUpdate int32            `json:"sessionUpdate"`
	Timing        []laptiming.Row  `json:"timing"`
	Telemetry     telemetry.Record `json:"telemetry"`
	Session       *session.Info    `json:"-"`
}

// reasons for a cycle without frame
const (
	missDisconnected = "disconnected"
	missCatalog      = "catalog"
	missNoData       = "nodata"
	missStale        = "stale"
	missTorn         = "torn"
)

type Processor struct {
	conn      *irsdk.Connection
	selector  *irsdk.BufferSelector
	sessions  *session.Provider
	timing    *laptiming.Engine
	telemetry *telemetry.Builder
	output    chan<- *Frame
	skipStale bool
	l         *log.Logger
	metrics   *metrics

	wasConnected bool
	generation   uuid.UUID
	// called after decoding, before the tick is verified
	afterDecode func()
}

type ProcessorOption func(proc *Processor)

// WithOutput publishes every frame to ch
func WithOutput(ch chan<- *Frame) ProcessorOption {
	return func(proc *Processor) {
		proc.output = ch
	}
}

// WithSkipStale yields no frame if the tick did not change since the
// previous cycle
func WithSkipStale(skip bool) ProcessorOption {
	return func(proc *Processor) {
		proc.skipStale = skip
	}
}

func WithTimingEngine(e *laptiming.Engine) ProcessorOption {
	return func(proc *Processor) {
		proc.timing = e
	}
}

func WithSessionProvider(p *session.Provider) ProcessorOption {
	return func(proc *Processor) {
		proc.sessions = p
	}
}

func WithLogger(l *log.Logger) ProcessorOption {
	return func(proc *Processor) {
		proc.l = l
	}
}

func NewProcessor(conn *irsdk.Connection, opts ...ProcessorOption) *Processor {
	ret := &Processor{
		conn:      conn,
		selector:  irsdk.NewBufferSelector(),
		telemetry: telemetry.NewBuilder(),
		l:         log.Default().Named("processing"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.sessions == nil {
		ret.sessions = session.NewProvider()
	}
	if ret.timing == nil {
		ret.timing = laptiming.NewEngine()
	}
	ret.metrics = newMetrics(ret.l)
	return ret
}

// Poll runs one cycle. It returns (nil, nil) if no consistent frame is
// available. The only errors returned are an unsupported variable type
// (corrupt catalog) and the cancellation of ctx.
//
//nolint:funlen,cyclop // by design
func (p *Processor) Poll(ctx context.Context) (*Frame, error) {
	p.metrics.cycle(ctx)
	if !p.checkConnection() {
		p.metrics.miss(ctx, missDisconnected)
		return nil, nil
	}
	cat, err := p.conn.Catalog()
	if err != nil {
		if !errors.Is(err, irsdk.ErrUnavailable) && !errors.Is(err, irsdk.ErrNotReady) {
			p.l.Warn("could not build catalog", log.ErrorField(err))
		}
		p.metrics.miss(ctx, missCatalog)
		return nil, nil
	}
	if cat.Generation() != p.generation {
		p.l.Info("new catalog",
			log.Stringer("generation", cat.Generation()),
			log.Int("numVars", cat.Len()))
		p.generation = cat.Generation()
		p.sessions.Reset(ctx)
		p.metrics.rebuild(ctx)
	}
	h, ok := p.conn.Header()
	if !ok {
		p.metrics.miss(ctx, missDisconnected)
		return nil, nil
	}
	snap, ok := p.selector.Select(h)
	if !ok {
		p.metrics.miss(ctx, missNoData)
		return nil, nil
	}
	if p.skipStale && !snap.Fresh() {
		p.metrics.miss(ctx, missStale)
		return nil, nil
	}
	info, err := p.sessions.Info(ctx, cat.Generation(), h)
	if err != nil {
		p.l.Debug("no session info", log.ErrorField(err))
		info = &session.Info{Key: irsdk.DocKeyOf(h), Doc: &session.Document{}}
	}

	frame := &Frame{
		Generation:    cat.Generation(),
		Tick:          snap.Tick(),
		Slot:          snap.Slot(),
		SessionUpdate: info.Key.Update,
		Session:       info,
	}
	err = irsdk.ReadConsistent(cat, snap, func(r *irsdk.VarReader) error {
		rows, err := p.timing.Compute(ctx, r, info.Roster)
		if err != nil {
			return err
		}
		frame.Timing = rows
		frame.Telemetry = p.telemetry.Build(r)
		if p.afterDecode != nil {
			p.afterDecode()
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, irsdk.ErrTornRead):
		p.l.Debug("torn read, frame discarded", log.Int32("tick", snap.Tick()))
		p.metrics.torn(ctx)
		p.metrics.miss(ctx, missTorn)
		return nil, nil
	case errors.Is(err, irsdk.ErrUnsupportedType):
		p.metrics.failed(ctx)
		return nil, err
	default:
		p.metrics.failed(ctx)
		return nil, fmt.Errorf("read frame: %w", err)
	}

	p.metrics.frame(ctx)
	if p.output != nil {
		select {
		case p.output <- frame:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return frame, nil
}

// checkConnection logs transitions of the connection status
func (p *Processor) checkConnection() bool {
	connected := p.conn.IsConnected()
	switch {
	case connected && !p.wasConnected:
		p.l.Info("Connected to simulator")
	case !connected && p.wasConnected:
		p.l.Info("Lost connection to simulator")
	}
	p.wasConnected = connected
	return connected
}

// Generation returns the catalog generation of the last successful cycle
func (p *Processor) Generation() uuid.UUID {
	return p.generation
}

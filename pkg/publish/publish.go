// Package publish forwards processed frames to external consumers.
package publish

import (
	"context"
	"encoding/json"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/processing"
	"github.com/mpapenbr/irtelemetry/pkg/session"
)

// Sink receives every frame of a subscription
type Sink interface {
	Name() string
	Publish(ctx context.Context, frame *processing.Frame) error
	Close() error
}

// Run feeds frames from ch into sink until ch is closed or ctx is done.
// Publish errors are logged, the sink stays active.
//
//nolint:whitespace // can't make both editor and linter happy
func Run(
	ctx context.Context, sink Sink, ch <-chan *processing.Frame, l *log.Logger,
) {
	logger := l.Named(sink.Name())
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("error closing sink", log.ErrorField(err))
		}
	}()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("context done")
			return
		case frame, ok := <-ch:
			if !ok {
				logger.Debug("frame channel closed")
				return
			}
			if err := sink.Publish(ctx, frame); err != nil {
				logger.Warn("could not publish frame",
					log.Int32("tick", frame.Tick),
					log.ErrorField(err))
			}
		}
	}
}

// Payloads holds the serialized parts of a frame
type Payloads struct {
	Timing    []byte
	Telemetry []byte
}

type timingMessage struct {
	Tick   int32 `json:"tick"`
	Timing any   `json:"timing"`
}

type telemetryMessage struct {
	Tick      int32 `json:"tick"`
	Telemetry any   `json:"telemetry"`
}

func Encode(frame *processing.Frame) (*Payloads, error) {
	timing, err := json.Marshal(timingMessage{Tick: frame.Tick, Timing: frame.Timing})
	if err != nil {
		return nil, err
	}
	telemetry, err := json.Marshal(telemetryMessage{
		Tick: frame.Tick, Telemetry: frame.Telemetry,
	})
	if err != nil {
		return nil, err
	}
	return &Payloads{Timing: timing, Telemetry: telemetry}, nil
}

// RosterTracker reports a roster only when the session document changed
// since the last call.
type RosterTracker struct {
	last  irsdk.DocKey
	valid bool
}

// Changed returns the roster of frame if it differs from the previous one
func (t *RosterTracker) Changed(frame *processing.Frame) ([]session.RosterEntry, bool) {
	if frame.Session == nil {
		return nil, false
	}
	if t.valid && t.last == frame.Session.Key {
		return nil, false
	}
	t.last = frame.Session.Key
	t.valid = true
	return frame.Session.Roster, true
}

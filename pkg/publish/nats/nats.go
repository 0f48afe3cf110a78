// Package nats publishes frames on NATS subjects and keeps the current
// roster in a JetStream key value bucket.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/processing"
	"github.com/mpapenbr/irtelemetry/pkg/publish"
)

const rosterKey = "roster"

type (
	publisher interface {
		Publish(subj string, data []byte) error
	}
	rosterStore interface {
		Put(ctx context.Context, key string, value []byte) (uint64, error)
	}
)

type Sink struct {
	conn    publisher
	kv      rosterStore
	prefix  string
	roster  publish.RosterTracker
	onClose func()
	l       *log.Logger
}

var _ publish.Sink = (*Sink)(nil)

type Option func(*Sink)

func WithSubjectPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = prefix
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Sink) {
		s.l = l
	}
}

func withRosterStore(kv rosterStore) Option {
	return func(s *Sink) {
		s.kv = kv
	}
}

// New creates a sink publishing on conn. If bucket is not empty the roster
// is stored in this JetStream key value bucket (created if missing).
//
//nolint:whitespace // can't make both editor and linter happy
func New(
	ctx context.Context, conn *nats.Conn, bucket string, opts ...Option,
) (*Sink, error) {
	s := newSink(conn, opts...)
	s.onClose = func() { conn.Close() }
	if bucket == "" {
		return s, nil
	}
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, err
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "current session roster",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("kv bucket %s: %w", bucket, err)
	}
	s.kv = kv
	return s, nil
}

func newSink(conn publisher, opts ...Option) *Sink {
	s := &Sink{
		conn:   conn,
		prefix: "irt",
		l:      log.Default().Named("publish.nats"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Name() string { return "nats" }

func (s *Sink) Subject(kind string) string {
	return fmt.Sprintf("%s.%s", s.prefix, kind)
}

func (s *Sink) Publish(ctx context.Context, frame *processing.Frame) error {
	payloads, err := publish.Encode(frame)
	if err != nil {
		return err
	}
	if err := s.conn.Publish(s.Subject("timing"), payloads.Timing); err != nil {
		return err
	}
	if err := s.conn.Publish(s.Subject("telemetry"), payloads.Telemetry); err != nil {
		return err
	}
	if s.kv == nil {
		return nil
	}
	if roster, changed := s.roster.Changed(frame); changed {
		data, err := json.Marshal(roster)
		if err != nil {
			return err
		}
		if _, err := s.kv.Put(ctx, rosterKey, data); err != nil {
			return fmt.Errorf("store roster: %w", err)
		}
		s.l.Debug("roster stored", log.Int("entries", len(roster)))
	}
	return nil
}

func (s *Sink) Close() error {
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

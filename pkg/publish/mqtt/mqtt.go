// Package mqtt publishes frames to an MQTT broker for dashboards.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/processing"
	"github.com/mpapenbr/irtelemetry/pkg/publish"
)

// Client is the part of the paho client used by the sink
type Client interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
}

type Sink struct {
	client      Client
	topic       string
	qos         byte
	publishWait time.Duration
	l           *log.Logger
}

var _ publish.Sink = (*Sink)(nil)

type Option func(*Sink)

func WithQoS(qos byte) Option {
	return func(s *Sink) {
		s.qos = qos
	}
}

// WithPublishWait waits at most d for the broker to acknowledge a message.
// Zero does not wait.
func WithPublishWait(d time.Duration) Option {
	return func(s *Sink) {
		s.publishWait = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Sink) {
		s.l = l
	}
}

// Connect creates a paho client for broker and connects it.
func Connect(broker, clientID string, l *log.Logger) (mqtt.Client, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("irt-%d", time.Now().UnixNano())
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(2 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.OnConnect = func(client mqtt.Client) {
		l.Info("MQTT connected", log.String("broker", broker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		l.Warn("MQTT connection lost", log.String("broker", broker), log.ErrorField(err))
	}
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return client, nil
}

func New(client Client, topic string, opts ...Option) *Sink {
	s := &Sink{
		client: client,
		topic:  strings.TrimSuffix(topic, "/"),
		l:      log.Default().Named("publish.mqtt"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Name() string { return "mqtt" }

func (s *Sink) Topic(kind string) string {
	return s.topic + "/" + kind
}

func (s *Sink) Publish(ctx context.Context, frame *processing.Frame) error {
	payloads, err := publish.Encode(frame)
	if err != nil {
		return err
	}
	if err := s.send(s.Topic("timing"), payloads.Timing); err != nil {
		return err
	}
	return s.send(s.Topic("telemetry"), payloads.Telemetry)
}

func (s *Sink) send(topic string, payload []byte) error {
	token := s.client.Publish(topic, s.qos, false, payload)
	if s.publishWait == 0 {
		return nil
	}
	if !token.WaitTimeout(s.publishWait) {
		return fmt.Errorf("publish to %s: timeout after %v", topic, s.publishWait)
	}
	return token.Error()
}

func (s *Sink) Close() error {
	if s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	return nil
}

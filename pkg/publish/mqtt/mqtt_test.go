package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/pkg/processing"
)

type fakeToken struct {
	complete bool
	err      error
}

func (t *fakeToken) Wait() bool                     { return t.complete }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.complete }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.complete {
		close(ch)
	}
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	token        *fakeToken
	messages     []published
	connected    bool
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload any) mqtt.Token {
	c.messages = append(c.messages, published{topic, qos, payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = true }

func (c *fakeClient) IsConnected() bool { return c.connected }

func TestSinkPublish(t *testing.T) {
	client := &fakeClient{token: &fakeToken{complete: true}, connected: true}
	s := New(client, "irt/live/", WithQoS(1))

	require.NoError(t, s.Publish(context.Background(), &processing.Frame{Tick: 7}))

	require.Len(t, client.messages, 2)
	assert.Equal(t, "irt/live/timing", client.messages[0].topic)
	assert.Equal(t, "irt/live/telemetry", client.messages[1].topic)
	assert.Equal(t, byte(1), client.messages[0].qos)
	assert.Contains(t, string(client.messages[0].payload), `"tick":7`)

	require.NoError(t, s.Close())
	assert.True(t, client.disconnected)
}

func TestSinkPublishWait(t *testing.T) {
	tests := []struct {
		name    string
		token   *fakeToken
		wait    time.Duration
		wantErr bool
	}{
		{"no wait ignores token", &fakeToken{}, 0, false},
		{"acknowledged", &fakeToken{complete: true}, time.Second, false},
		{"timeout", &fakeToken{}, time.Millisecond, true},
		{"broker error", &fakeToken{complete: true, err: errors.New("not authorized")}, time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{token: tt.token}
			s := New(client, "irt", WithPublishWait(tt.wait))
			err := s.Publish(context.Background(), &processing.Frame{})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Len(t, client.messages, 1)
			} else {
				assert.NoError(t, err)
				assert.Len(t, client.messages, 2)
			}
		})
	}
}

func TestCloseDisconnected(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, New(client, "irt").Close())
	assert.False(t, client.disconnected)
}

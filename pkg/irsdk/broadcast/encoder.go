// Package broadcast encodes remote commands for the simulator's command
// channel. The channel itself (a registered window message on the
// simulator's platform) is provided by the caller.
package broadcast

import (
	"fmt"
	"math"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
)

// floatScale moves 16 bits of the fractional part into the integer part
const floatScale = 65536.0

// MakeLong packs two 16 bit words into one 32 bit word.
// low is or'ed in unchanged, so a negative low fills the high word.
func MakeLong(low, high int32) int32 {
	return int32((uint32(high)<<16)&0xFFFF0000 | uint32(low))
}

// ScaleFloat converts f to the fixed point representation used by the
// float parameter variant. Results outside the int32 range saturate,
// NaN yields 0.
func ScaleFloat(f float32) int32 {
	v := float64(f) * floatScale
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// Message is an encoded command ready to be sent
type Message struct {
	Command Command
	WParam  int32 // MakeLong(command, var1)
	LParam  int32
}

// Encode builds the message for the two parameter form
func Encode(cmd Command, var1, var2 int32) Message {
	return Message{Command: cmd, WParam: MakeLong(int32(cmd), var1), LParam: var2}
}

// Encode3 builds the message for the three parameter form.
// var2 and var3 are packed into the second parameter (var2 low, var3 high).
func Encode3(cmd Command, var1, var2, var3 int32) Message {
	return Encode(cmd, var1, MakeLong(var2, var3))
}

// EncodeFloat builds the message for the float parameter form
func EncodeFloat(cmd Command, var1 int32, value float32) Message {
	return Encode(cmd, var1, ScaleFloat(value))
}

func (m Message) String() string {
	return fmt.Sprintf("%s wParam=0x%08x lParam=0x%08x", m.Command, uint32(m.WParam), uint32(m.LParam))
}

// Channel is the external notification mechanism of the platform
type Channel interface {
	// RegisterMessage returns the message id registered for name. 0 means
	// the message could not be registered.
	RegisterMessage(name string) (uint32, error)
	// Notify delivers the message without waiting for it to be processed.
	Notify(msgID uint32, wParam, lParam int32) error
}

type Sender struct {
	ch   Channel
	name string
	l    *log.Logger
}

type SenderOption func(*Sender)

func WithLogger(l *log.Logger) SenderOption {
	return func(s *Sender) {
		s.l = l
	}
}

// WithMessageName overrides the registered message name
func WithMessageName(name string) SenderOption {
	return func(s *Sender) {
		s.name = name
	}
}

func NewSender(ch Channel, opts ...SenderOption) *Sender {
	ret := &Sender{
		ch:   ch,
		name: irsdk.BroadcastMsgName,
		l:    log.Default().Named("irsdk.broadcast"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (s *Sender) Send(cmd Command, var1, var2 int32) error {
	return s.SendMessage(Encode(cmd, var1, var2))
}

func (s *Sender) Send3(cmd Command, var1, var2, var3 int32) error {
	return s.SendMessage(Encode3(cmd, var1, var2, var3))
}

func (s *Sender) SendFloat(cmd Command, var1 int32, value float32) error {
	return s.SendMessage(EncodeFloat(cmd, var1, value))
}

// SendMessage dispatches m to the channel. Messages with an unknown
// command or without a registered message id are dropped silently.
func (s *Sender) SendMessage(m Message) error {
	if !m.Command.Valid() {
		s.l.Debug("dropping unknown command", log.Int32("cmd", int32(m.Command)))
		return nil
	}
	msgID, err := s.ch.RegisterMessage(s.name)
	if err != nil {
		return fmt.Errorf("register message %s: %w", s.name, err)
	}
	if msgID == 0 {
		s.l.Debug("no message id, dropping command", log.Stringer("cmd", m.Command))
		return nil
	}
	if err := s.ch.Notify(msgID, m.WParam, m.LParam); err != nil {
		return fmt.Errorf("notify %s: %w", m.Command, err)
	}
	return nil
}

// Recorder is a Channel collecting the notified messages. It is used for
// dry runs and tests.
type Recorder struct {
	MsgID    uint32
	Messages []Notified
}

type Notified struct {
	MsgID  uint32
	WParam int32
	LParam int32
}

var _ Channel = (*Recorder)(nil)

func (r *Recorder) RegisterMessage(name string) (uint32, error) {
	return r.MsgID, nil
}

func (r *Recorder) Notify(msgID uint32, wParam, lParam int32) error {
	r.Messages = append(r.Messages, Notified{MsgID: msgID, WParam: wParam, LParam: lParam})
	return nil
}

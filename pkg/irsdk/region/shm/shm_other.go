//go:build !windows

package shm

import (
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/broadcast"
)

type Platform struct{}

var _ irsdk.Platform = Platform{}

func New() Platform {
	return Platform{}
}

func (Platform) OpenRegion(name string) (irsdk.Region, error) {
	return nil, ErrNotSupported
}

func (Platform) OpenSignal(name string) (irsdk.Signal, error) {
	return nil, ErrNotSupported
}

// Channel is not available on this platform
type Channel struct{}

var _ broadcast.Channel = Channel{}

func NewChannel() (Channel, error) {
	return Channel{}, ErrNotSupported
}

func (Channel) RegisterMessage(name string) (uint32, error) {
	return 0, ErrNotSupported
}

func (Channel) Notify(msgID uint32, wParam, lParam int32) error {
	return ErrNotSupported
}

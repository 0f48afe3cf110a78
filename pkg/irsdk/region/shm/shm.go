// Package shm attaches to the shared memory published by the simulator on
// Windows and provides the simulator's broadcast message channel.
package shm

import "errors"

var ErrNotSupported = errors.New("shared memory access is only supported on windows")

//go:build windows

package shm

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/broadcast"
)

const hwndBroadcast = 0xffff

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	user32                = windows.NewLazySystemDLL("user32.dll")
	procOpenFileMapping   = kernel32.NewProc("OpenFileMappingW")
	procRegisterMessage   = user32.NewProc("RegisterWindowMessageW")
	procSendNotifyMessage = user32.NewProc("SendNotifyMessageW")
)

type Platform struct{}

var _ irsdk.Platform = Platform{}

func New() Platform {
	return Platform{}
}

func (Platform) OpenRegion(name string) (irsdk.Region, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, _, callErr := procOpenFileMapping.Call(
		uintptr(windows.FILE_MAP_READ), 0, uintptr(unsafe.Pointer(namePtr)))
	if h == 0 {
		return nil, fmt.Errorf("open file mapping %s: %w", name, callErr)
	}
	handle := windows.Handle(h)
	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ, 0, 0, 0)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("map view of %s: %w", name, err)
	}
	var info windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
		windows.UnmapViewOfFile(addr)
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("query view of %s: %w", name, err)
	}
	//nolint:govet // the view stays mapped until Close
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(info.RegionSize))
	return &region{handle: handle, addr: addr, mem: mem}, nil
}

func (Platform) OpenSignal(name string) (irsdk.Signal, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.OpenEvent(windows.SYNCHRONIZE, false, namePtr)
	if err != nil {
		return nil, fmt.Errorf("open event %s: %w", name, err)
	}
	return &signal{handle: h}, nil
}

type region struct {
	once   sync.Once
	handle windows.Handle
	addr   uintptr
	mem    []byte
}

func (r *region) Bytes() []byte { return r.mem }

func (r *region) Close() error {
	var err error
	r.once.Do(func() {
		r.mem = nil
		if e := windows.UnmapViewOfFile(r.addr); e != nil {
			err = e
		}
		if e := windows.CloseHandle(r.handle); e != nil && err == nil {
			err = e
		}
	})
	return err
}

type signal struct {
	once   sync.Once
	handle windows.Handle
}

func (s *signal) Close() error {
	var err error
	s.once.Do(func() { err = windows.CloseHandle(s.handle) })
	return err
}

// Channel delivers broadcast messages to all top level windows
type Channel struct{}

var _ broadcast.Channel = Channel{}

func NewChannel() (Channel, error) {
	return Channel{}, nil
}

func (Channel) RegisterMessage(name string) (uint32, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	id, _, callErr := procRegisterMessage.Call(uintptr(unsafe.Pointer(namePtr)))
	if id == 0 {
		return 0, fmt.Errorf("register window message %s: %w", name, callErr)
	}
	return uint32(id), nil
}

func (Channel) Notify(msgID uint32, wParam, lParam int32) error {
	ret, _, callErr := procSendNotifyMessage.Call(
		hwndBroadcast, uintptr(msgID), uintptr(uint32(wParam)), uintptr(uint32(lParam)))
	if ret == 0 {
		return fmt.Errorf("send notify message: %w", callErr)
	}
	return nil
}

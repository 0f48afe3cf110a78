// Package memory provides an in-process platform. Regions and signals are
// published by name, the way the simulator would create them.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
)

var (
	ErrNoRegion = errors.New("region not published")
	ErrNoSignal = errors.New("signal not published")
)

type Platform struct {
	mu       sync.Mutex
	regions  map[string][]byte
	signals  map[string]bool
	opened   map[string]int
	closed   map[string]int
	revision map[string]uint64
}

var _ irsdk.Platform = (*Platform)(nil)

func New() *Platform {
	return &Platform{
		regions:  make(map[string][]byte),
		signals:  make(map[string]bool),
		opened:   make(map[string]int),
		closed:   make(map[string]int),
		revision: make(map[string]uint64),
	}
}

// Publish makes mem available under name. Publishing again replaces the
// memory seen by regions opened afterwards and by already open ones.
func (p *Platform) Publish(name string, mem []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regions[name] = mem
	p.revision[name]++
}

func (p *Platform) Withdraw(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.regions, name)
}

func (p *Platform) SetSignal(name string, available bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals[name] = available
}

// Opened returns how often the named region or signal was opened
func (p *Platform) Opened(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened[name]
}

// Closed returns how often a handle with the given name was closed
func (p *Platform) Closed(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed[name]
}

func (p *Platform) OpenRegion(name string) (irsdk.Region, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.regions[name]; !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoRegion)
	}
	p.opened[name]++
	return &region{p: p, name: name}, nil
}

func (p *Platform) OpenSignal(name string) (irsdk.Signal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signals[name] {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSignal)
	}
	p.opened[name]++
	return &signal{p: p, name: name}, nil
}

func (p *Platform) markClosed(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed[name]++
}

type region struct {
	p    *Platform
	name string
	once sync.Once
}

func (r *region) Bytes() []byte {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	return r.p.regions[r.name]
}

func (r *region) Revision() uint64 {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	return r.p.revision[r.name]
}

func (r *region) Close() error {
	r.once.Do(func() { r.p.markClosed(r.name) })
	return nil
}

type signal struct {
	p    *Platform
	name string
	once sync.Once
}

func (s *signal) Close() error {
	s.once.Do(func() { s.p.markClosed(s.name) })
	return nil
}

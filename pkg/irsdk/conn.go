package irsdk

import (
	"fmt"
	"sync"

	"github.com/mpapenbr/irtelemetry/log"
)

type ConnState int

const (
	StateUnattached ConnState = iota
	StateRegionMapped
	StateSignalBound
	StateReady
)

func (s ConnState) String() string {
	switch s {
	case StateUnattached:
		return "Unattached"
	case StateRegionMapped:
		return "RegionMapped"
	case StateSignalBound:
		return "SignalBound"
	case StateReady:
		return "Ready"
	}
	return fmt.Sprintf("ConnState(%d)", int(s))
}

// Connection owns the shared region, the readiness signal and the catalog of
// the current connection generation.
type Connection struct {
	platform   Platform
	regionName string
	signalName string
	l          *log.Logger

	mu            sync.Mutex
	state         ConnState
	region        Region
	signal        Signal
	header        HeaderView
	catalog       *Catalog
	revision      uint64
	seenConnected bool
}

// Revisioned may be implemented by a Region whose content can be replaced
// as a whole (for example a reloaded dump file). A changed revision drops
// the catalog.
type Revisioned interface {
	Revision() uint64
}

type ConnOption func(*Connection)

func WithLogger(l *log.Logger) ConnOption {
	return func(c *Connection) {
		c.l = l
	}
}

func WithRegionName(name string) ConnOption {
	return func(c *Connection) {
		c.regionName = name
	}
}

func WithSignalName(name string) ConnOption {
	return func(c *Connection) {
		c.signalName = name
	}
}

func NewConnection(p Platform, opts ...ConnOption) *Connection {
	c := &Connection{
		platform:   p,
		regionName: MemMapFileName,
		signalName: DataValidEventName,
		l:          log.Default().Named("irsdk.conn"),
		state:      StateUnattached,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Startup acquires whatever is missing of region and signal. It may be called
// any number of times. A failing stage keeps the previous state and is
// retried on the next call.
func (c *Connection) Startup() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startup()
}

func (c *Connection) startup() bool {
	if c.state == StateUnattached {
		region, err := c.platform.OpenRegion(c.regionName)
		if err != nil {
			c.l.Debug("could not open region",
				log.String("name", c.regionName), log.ErrorField(err))
			return false
		}
		header, err := NewHeaderView(region.Bytes())
		if err != nil {
			c.l.Debug("region too small", log.ErrorField(err))
			c.closeQuietly(region)
			return false
		}
		c.region = region
		c.header = header
		c.state = StateRegionMapped
	}
	if c.state == StateRegionMapped {
		signal, err := c.platform.OpenSignal(c.signalName)
		if err != nil {
			c.l.Debug("could not open signal",
				log.String("name", c.signalName), log.ErrorField(err))
			return false
		}
		c.signal = signal
		c.state = StateSignalBound
	}
	if c.state == StateSignalBound {
		c.state = StateReady
	}
	return c.state == StateReady
}

// IsConnected reports whether the region is attached and the simulator
// flags the data as connected. A connected bit that clears after it was seen
// releases all handles and drops the catalog.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected()
}

func (c *Connection) isConnected() bool {
	if c.state != StateReady && !c.startup() {
		return false
	}
	c.refreshHeader()
	if c.header.Connected() {
		c.seenConnected = true
		return true
	}
	if c.seenConnected {
		c.l.Debug("connected flag cleared, releasing region")
		if err := c.release(); err != nil {
			c.l.Warn("error releasing region", log.ErrorField(err))
		}
	}
	return false
}

func (c *Connection) refreshHeader() {
	if rev, ok := c.region.(Revisioned); ok && rev.Revision() != c.revision {
		c.revision = rev.Revision()
		c.catalog = nil
	}
	if h, err := NewHeaderView(c.region.Bytes()); err == nil {
		c.header = h
	}
}

// Header returns the header view if the connection is established
func (c *Connection) Header() (HeaderView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isConnected() {
		return HeaderView{}, false
	}
	return c.header, true
}

// Catalog returns the catalog of the current connection generation. It is
// built on first use after a (re)connect.
func (c *Connection) Catalog() (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isConnected() {
		if c.state != StateReady {
			return nil, ErrUnavailable
		}
		return nil, ErrNotReady
	}
	if c.catalog == nil {
		cat, err := BuildCatalog(c.header)
		if err != nil {
			return nil, fmt.Errorf("build catalog: %w", err)
		}
		c.catalog = cat
		c.l.Debug("catalog built",
			log.Int("numVars", cat.Len()),
			log.Stringer("generation", cat.Generation()))
	}
	return c.catalog, nil
}

// Close releases region and signal. The connection may be started again.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.release()
}

func (c *Connection) release() error {
	var firstErr error
	if c.signal != nil {
		if err := c.signal.Close(); err != nil {
			firstErr = err
		}
	}
	if c.region != nil {
		if err := c.region.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.signal = nil
	c.region = nil
	c.header = HeaderView{}
	c.catalog = nil
	c.revision = 0
	c.seenConnected = false
	c.state = StateUnattached
	return firstErr
}

func (c *Connection) closeQuietly(r Region) {
	if err := r.Close(); err != nil {
		c.l.Debug("closing region", log.ErrorField(err))
	}
}

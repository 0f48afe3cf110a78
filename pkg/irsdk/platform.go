package irsdk

import "io"

// Platform provides the OS specific primitives needed to attach to the
// simulator. Implementations live outside this package (see region/...).
type Platform interface {
	// OpenRegion returns a readable view of the named shared memory region.
	OpenRegion(name string) (Region, error)
	// OpenSignal binds the named readiness signal of the writer.
	OpenSignal(name string) (Signal, error)
}

// Region is a read-only view of the shared memory written by the simulator.
// The returned slice may be mutated concurrently by the writer.
type Region interface {
	io.Closer
	Bytes() []byte
}

// Signal is the readiness signal of the writer. The core never waits on it,
// holding it is part of the connection state only.
type Signal interface {
	io.Closer
}

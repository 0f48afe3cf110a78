package irsdk

import (
	"errors"
	"fmt"
)

var (
	// region or readiness signal not (yet) acquired
	ErrUnavailable = errors.New("shared memory region not available")
	// connected bit not set in the header status
	ErrNotReady = errors.New("simulator not ready")
	// tick count of the selected buffer changed while reading
	ErrTornRead = errors.New("buffer overwritten while reading")
	// name not present in the variable catalog
	ErrUnknownVariable = errors.New("unknown variable")
	// descriptor carries a type tag outside the known tags
	ErrUnsupportedType = errors.New("unsupported variable type")
	// no terminator found in the session document
	ErrMalformedSessionDocument = errors.New("malformed session document")
	// a read would exceed the bounds of the region or buffer
	ErrOutOfBounds = errors.New("read out of bounds")
)

// UnsupportedVarTypeError reports a descriptor with an unknown type tag.
// It matches ErrUnsupportedType with errors.Is.
type UnsupportedVarTypeError struct {
	Name string
	Tag  VarType
}

func (e *UnsupportedVarTypeError) Error() string {
	return fmt.Sprintf("variable %q: unsupported type tag %d", e.Name, int32(e.Tag))
}

func (e *UnsupportedVarTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

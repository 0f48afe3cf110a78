package irsdk

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aarondl/opt/omit"
)

// VarReader decodes variables from one Snapshot using a Catalog.
//
// The typed accessors (Int, FloatAt, ...) are permissive: unknown names and
// out of range entries yield the zero value. A descriptor with an unknown type
// tag also yields the zero value but is recorded and reported by Err.
// Use Lookup or Decode to tell absent variables from zero values.
//
// A VarReader is safe for concurrent use.
type VarReader struct {
	cat  *Catalog
	snap *Snapshot

	mu  sync.Mutex
	err error
}

func NewVarReader(cat *Catalog, snap *Snapshot) *VarReader {
	return &VarReader{cat: cat, snap: snap}
}

func (r *VarReader) Catalog() *Catalog { return r.cat }

func (r *VarReader) Snapshot() *Snapshot { return r.snap }

// Err returns the first unsupported type error encountered by a typed accessor
func (r *VarReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Lookup resolves name in the catalog of the reader
func (r *VarReader) Lookup(name string) omit.Val[VarDesc] {
	return r.cat.Find(name)
}

// Decode reads the element entry of d from the snapshot.
// Errors: ErrOutOfBounds if entry is not within [0, d.Count) or the element
// does not fit into the buffer, ErrUnsupportedType for unknown type tags.
func (r *VarReader) Decode(d VarDesc, entry int) (Value, error) {
	size, ok := d.Type.Size()
	if !ok {
		return nil, &UnsupportedVarTypeError{Name: d.Name, Tag: d.Type}
	}
	if entry < 0 || entry >= d.Count {
		return nil, fmt.Errorf("%s[%d] (count %d): %w", d.Name, entry, d.Count, ErrOutOfBounds)
	}
	data := r.snap.Bytes()
	start := int64(d.Offset) + int64(entry)*int64(size)
	if d.Offset < 0 || start+int64(size) > int64(len(data)) {
		return nil, fmt.Errorf("%s[%d] at %d: %w", d.Name, entry, start, ErrOutOfBounds)
	}
	return decodeValue(d.Name, d.Type, data[start:start+int64(size)])
}

// DecodeName resolves name and decodes the element entry.
// Unknown names yield ErrUnknownVariable.
func (r *VarReader) DecodeName(name string, entry int) (Value, error) {
	d, ok := r.cat.Find(name).Get()
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownVariable)
	}
	return r.Decode(d, entry)
}

// value is the permissive path shared by the typed accessors
func (r *VarReader) value(idx, entry int) Value {
	d, ok := r.cat.Desc(idx)
	if !ok {
		return nil
	}
	v, err := r.Decode(d, entry)
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			r.mu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.mu.Unlock()
		}
		return nil
	}
	return v
}

func (r *VarReader) Bool(name string) bool { return r.BoolAt(name, 0) }

func (r *VarReader) BoolAt(name string, entry int) bool {
	return r.BoolVar(r.cat.Index(name), entry)
}

// BoolVar reads by catalog index as returned by Catalog.Index
func (r *VarReader) BoolVar(idx, entry int) bool {
	return AsBool(r.value(idx, entry))
}

func (r *VarReader) Int(name string) int { return r.IntAt(name, 0) }

func (r *VarReader) IntAt(name string, entry int) int {
	return r.IntVar(r.cat.Index(name), entry)
}

func (r *VarReader) IntVar(idx, entry int) int {
	return AsInt(r.value(idx, entry))
}

func (r *VarReader) Float(name string) float32 { return r.FloatAt(name, 0) }

func (r *VarReader) FloatAt(name string, entry int) float32 {
	return r.FloatVar(r.cat.Index(name), entry)
}

func (r *VarReader) FloatVar(idx, entry int) float32 {
	return AsFloat(r.value(idx, entry))
}

func (r *VarReader) Double(name string) float64 { return r.DoubleAt(name, 0) }

func (r *VarReader) DoubleAt(name string, entry int) float64 {
	return r.DoubleVar(r.cat.Index(name), entry)
}

func (r *VarReader) DoubleVar(idx, entry int) float64 {
	return AsDouble(r.value(idx, entry))
}

// ReadConsistent runs fn with a reader on snap and checks the tick count of
// the slot afterwards. ErrTornRead is returned if the writer overwrote the
// slot meanwhile, the results of fn must be discarded in that case.
// An unsupported type met by a typed accessor is returned as well.
func ReadConsistent(cat *Catalog, snap *Snapshot, fn func(r *VarReader) error) error {
	r := NewVarReader(cat, snap)
	if err := fn(r); err != nil {
		return err
	}
	if err := r.Err(); err != nil {
		return err
	}
	if !snap.Verify() {
		return fmt.Errorf("slot %d tick %d: %w", snap.Slot(), snap.Tick(), ErrTornRead)
	}
	return nil
}

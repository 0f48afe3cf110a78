package irsdk

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/aarondl/opt/omit"
	"github.com/google/uuid"
)

// byte offsets within a variable descriptor entry
const (
	varHdrType        = 0
	varHdrOffset      = 4
	varHdrCount       = 8
	varHdrCountAsTime = 12
	varHdrName        = 16
	varHdrDesc        = varHdrName + MaxString
	varHdrUnit        = varHdrDesc + MaxDesc

	VarHeaderSize = varHdrUnit + UnitLen
)

// NotFound is returned by Catalog.Index for unknown names
const NotFound = -1

// VarDesc describes a telemetry channel inside a buffer slot
type VarDesc struct {
	Index       int
	Name        string
	Type        VarType
	Count       int // array arity, >= 1
	Offset      int // byte offset within a buffer slot
	CountAsTime bool
	Desc        string
	Unit        string
}

// Catalog is the table of variable descriptors of one connection generation.
// It is never modified after creation.
type Catalog struct {
	generation uuid.UUID
	bufLen     int
	vars       []VarDesc
	byName     map[string]int
}

// BuildCatalog reads the descriptor table referenced by the header.
func BuildCatalog(h HeaderView) (*Catalog, error) {
	mem := h.Region()
	numVars := int64(h.NumVars())
	tableOffset := int64(h.VarHeaderOffset())
	if numVars < 0 || tableOffset < 0 ||
		tableOffset+numVars*VarHeaderSize > int64(len(mem)) {
		return nil, fmt.Errorf("var header table (offset %d, %d entries): %w",
			tableOffset, numVars, ErrOutOfBounds)
	}
	c := &Catalog{
		generation: uuid.New(),
		bufLen:     int(h.BufLen()),
		vars:       make([]VarDesc, 0, numVars),
		byName:     make(map[string]int, numVars),
	}
	for i := range int(numVars) {
		start := int(tableOffset) + i*VarHeaderSize
		d := parseVarHeader(mem[start : start+VarHeaderSize])
		d.Index = i
		c.vars = append(c.vars, d)
		// first exact match wins
		if _, ok := c.byName[d.Name]; !ok {
			c.byName[d.Name] = i
		}
	}
	return c, nil
}

func parseVarHeader(b []byte) VarDesc {
	return VarDesc{
		Type:        VarType(int32(binary.LittleEndian.Uint32(b[varHdrType:]))),
		Offset:      int(int32(binary.LittleEndian.Uint32(b[varHdrOffset:]))),
		Count:       int(int32(binary.LittleEndian.Uint32(b[varHdrCount:]))),
		CountAsTime: b[varHdrCountAsTime] != 0,
		Name:        cString(b[varHdrName : varHdrName+MaxString]),
		Desc:        cString(b[varHdrDesc : varHdrDesc+MaxDesc]),
		Unit:        cString(b[varHdrUnit : varHdrUnit+UnitLen]),
	}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Generation identifies the connection generation the catalog was built for
func (c *Catalog) Generation() uuid.UUID { return c.generation }

func (c *Catalog) Len() int { return len(c.vars) }

// Descriptors returns the descriptors in table order
func (c *Catalog) Descriptors() []VarDesc {
	ret := make([]VarDesc, len(c.vars))
	copy(ret, c.vars)
	return ret
}

// Index resolves name to its descriptor index or NotFound
func (c *Catalog) Index(name string) int {
	if idx, ok := c.byName[name]; ok {
		return idx
	}
	return NotFound
}

// Desc returns the descriptor at idx
func (c *Catalog) Desc(idx int) (VarDesc, bool) {
	if idx < 0 || idx >= len(c.vars) {
		return VarDesc{}, false
	}
	return c.vars[idx], true
}

// Find resolves name. The result is unset if the catalog has no such variable.
func (c *Catalog) Find(name string) omit.Val[VarDesc] {
	if d, ok := c.Desc(c.Index(name)); ok {
		return omit.From(d)
	}
	return omit.Val[VarDesc]{}
}

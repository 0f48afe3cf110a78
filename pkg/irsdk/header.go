package irsdk

import (
	"encoding/binary"
	"fmt"
)

// byte offsets within the header
const (
	hdrVersion           = 0
	hdrStatus            = 4
	hdrTickRate          = 8
	hdrSessionInfoUpdate = 12
	hdrSessionInfoLen    = 16
	hdrSessionInfoOffset = 20
	hdrNumVars           = 24
	hdrVarHeaderOffset   = 28
	hdrNumBuf            = 32
	hdrBufLen            = 36
	hdrVarBuf            = 48

	VarBufSize = 16
	HeaderSize = hdrVarBuf + MaxBufs*VarBufSize
)

// VarBuf describes one rotating buffer slot
type VarBuf struct {
	TickCount int32 // incremented by the writer on every update
	BufOffset int32 // offset from the start of the region
}

// HeaderView interprets the fixed size header at the start of the region.
// All values are read live, the writer may change them at any time.
type HeaderView struct {
	mem []byte
}

func NewHeaderView(mem []byte) (HeaderView, error) {
	if len(mem) < HeaderSize {
		return HeaderView{}, fmt.Errorf("header needs %d bytes, region has %d: %w",
			HeaderSize, len(mem), ErrOutOfBounds)
	}
	return HeaderView{mem: mem}, nil
}

func (h HeaderView) i32(off int) int32 {
	return int32(binary.LittleEndian.Uint32(h.mem[off : off+4]))
}

func (h HeaderView) Version() int32 { return h.i32(hdrVersion) }

func (h HeaderView) Status() StatusField { return StatusField(h.i32(hdrStatus)) }

func (h HeaderView) Connected() bool {
	return h.Status()&StatusConnected != 0
}

func (h HeaderView) TickRate() int32 { return h.i32(hdrTickRate) }

// SessionInfoUpdate is incremented by the writer when the session document changes
func (h HeaderView) SessionInfoUpdate() int32 { return h.i32(hdrSessionInfoUpdate) }

func (h HeaderView) SessionInfoLen() int32 { return h.i32(hdrSessionInfoLen) }

func (h HeaderView) SessionInfoOffset() int32 { return h.i32(hdrSessionInfoOffset) }

func (h HeaderView) NumVars() int32 { return h.i32(hdrNumVars) }

func (h HeaderView) VarHeaderOffset() int32 { return h.i32(hdrVarHeaderOffset) }

// NumBuf returns the number of buffer slots, clamped to [0, MaxBufs]
func (h HeaderView) NumBuf() int {
	n := int(h.i32(hdrNumBuf))
	return max(0, min(n, MaxBufs))
}

func (h HeaderView) BufLen() int32 { return h.i32(hdrBufLen) }

func (h HeaderView) VarBuf(slot int) VarBuf {
	off := hdrVarBuf + slot*VarBufSize
	return VarBuf{TickCount: h.i32(off), BufOffset: h.i32(off + 4)}
}

// Region returns the complete region the header belongs to
func (h HeaderView) Region() []byte { return h.mem }

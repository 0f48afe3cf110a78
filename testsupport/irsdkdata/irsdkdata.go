// Package irsdkdata builds shared memory images laid out like the ones
// published by the simulator. It is used by tests only.
package irsdkdata

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
)

// header offsets, kept separate from the decoder on purpose
const (
	offVersion           = 0
	offStatus            = 4
	offTickRate          = 8
	offSessionInfoUpdate = 12
	offSessionInfoLen    = 16
	offSessionInfoOffset = 20
	offNumVars           = 24
	offVarHeaderOffset   = 28
	offNumBuf            = 32
	offBufLen            = 36
	offVarBuf            = 48
)

type Var struct {
	Name  string
	Type  irsdk.VarType
	Count int
	Desc  string
	Unit  string
}

type Builder struct {
	vars       []Var
	numBuf     int
	docCap     int
	doc        []byte
	connected  bool
	tickRate   int32
}

type Option func(*Builder)

func WithNumBuf(n int) Option {
	return func(b *Builder) { b.numBuf = n }
}

// WithDocCapacity sets the space reserved for the session document
func WithDocCapacity(n int) Option {
	return func(b *Builder) { b.docCap = n }
}

func WithSessionDoc(doc string) Option {
	return func(b *Builder) { b.doc = []byte(doc) }
}

func WithConnected(connected bool) Option {
	return func(b *Builder) { b.connected = connected }
}

func New(opts ...Option) *Builder {
	b := &Builder{
		numBuf:    3,
		docCap:    4096,
		connected: true,
		tickRate:  60,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) AddVar(name string, t irsdk.VarType, count int) *Builder {
	b.vars = append(b.vars, Var{Name: name, Type: t, Count: count})
	return b
}

func (b *Builder) AddVars(vars ...Var) *Builder {
	b.vars = append(b.vars, vars...)
	return b
}

// Image is a mutable shared memory image
type Image struct {
	Mem       []byte
	bufOffset []int
	bufLen    int
	docOffset int
	docCap    int
	vars      map[string]varPos
}

type varPos struct {
	t      irsdk.VarType
	offset int
	count  int
}

func sizeOf(t irsdk.VarType) int {
	if s, ok := t.Size(); ok {
		return s
	}
	return 4
}

func (b *Builder) Build() *Image {
	img := &Image{vars: make(map[string]varPos), docCap: b.docCap}
	bufLen := 0
	for _, v := range b.vars {
		if _, ok := img.vars[v.Name]; !ok {
			img.vars[v.Name] = varPos{t: v.Type, offset: bufLen, count: v.Count}
		}
		bufLen += sizeOf(v.Type) * v.Count
	}
	bufLen = align16(bufLen)
	img.bufLen = bufLen

	varTable := irsdk.HeaderSize
	img.docOffset = varTable + len(b.vars)*irsdk.VarHeaderSize
	firstBuf := align16(img.docOffset + b.docCap)
	total := firstBuf + b.numBuf*bufLen
	img.Mem = make([]byte, total)

	img.putI32(offVersion, 2)
	img.putI32(offTickRate, b.tickRate)
	img.putI32(offNumVars, int32(len(b.vars)))
	img.putI32(offVarHeaderOffset, int32(varTable))
	img.putI32(offNumBuf, int32(b.numBuf))
	img.putI32(offBufLen, int32(bufLen))
	img.putI32(offSessionInfoOffset, int32(img.docOffset))
	img.SetConnected(b.connected)

	offset := 0
	for i, v := range b.vars {
		entry := img.Mem[varTable+i*irsdk.VarHeaderSize:]
		binary.LittleEndian.PutUint32(entry[0:], uint32(v.Type))
		binary.LittleEndian.PutUint32(entry[4:], uint32(offset))
		binary.LittleEndian.PutUint32(entry[8:], uint32(v.Count))
		copy(entry[16:16+irsdk.MaxString-1], v.Name)
		copy(entry[48:48+irsdk.MaxDesc-1], v.Desc)
		copy(entry[112:112+irsdk.UnitLen-1], v.Unit)
		offset += sizeOf(v.Type) * v.Count
	}
	for i := range b.numBuf {
		off := firstBuf + i*bufLen
		img.bufOffset = append(img.bufOffset, off)
		img.putI32(offVarBuf+i*irsdk.VarBufSize+4, int32(off))
	}
	if b.doc != nil {
		img.SetSessionDoc(b.doc)
	}
	return img
}

func align16(n int) int {
	return (n + 15) &^ 15
}

func (img *Image) putI32(off int, v int32) {
	binary.LittleEndian.PutUint32(img.Mem[off:], uint32(v))
}

func (img *Image) SetConnected(connected bool) {
	if connected {
		img.putI32(offStatus, int32(irsdk.StatusConnected))
	} else {
		img.putI32(offStatus, 0)
	}
}

func (img *Image) SetTick(slot int, tick int32) {
	img.putI32(offVarBuf+slot*irsdk.VarBufSize, tick)
}

func (img *Image) Tick(slot int) int32 {
	return int32(binary.LittleEndian.Uint32(img.Mem[offVarBuf+slot*irsdk.VarBufSize:]))
}

// SetSessionDoc writes raw into the reserved document area, sets the
// declared length to the full capacity and bumps the update counter.
func (img *Image) SetSessionDoc(raw []byte) {
	area := img.Mem[img.docOffset : img.docOffset+img.docCap]
	clear(area)
	copy(area, raw)
	img.putI32(offSessionInfoLen, int32(img.docCap))
	upd := int32(binary.LittleEndian.Uint32(img.Mem[offSessionInfoUpdate:]))
	img.putI32(offSessionInfoUpdate, upd+1)
}

// SetVarType overwrites the type tag of the descriptor at idx
func (img *Image) SetVarType(idx int, t irsdk.VarType) {
	img.putI32(irsdk.HeaderSize+idx*irsdk.VarHeaderSize, int32(t))
}

func (img *Image) pos(slot int, name string, entry int) (varPos, []byte) {
	p, ok := img.vars[name]
	if !ok {
		panic(fmt.Sprintf("irsdkdata: unknown var %s", name))
	}
	if entry < 0 || entry >= p.count {
		panic(fmt.Sprintf("irsdkdata: %s[%d] out of range", name, entry))
	}
	start := img.bufOffset[slot] + p.offset + entry*sizeOf(p.t)
	return p, img.Mem[start:]
}

func (img *Image) PutInt(slot int, name string, entry int, v int32) {
	_, b := img.pos(slot, name, entry)
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func (img *Image) PutFloat(slot int, name string, entry int, v float32) {
	_, b := img.pos(slot, name, entry)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func (img *Image) PutDouble(slot int, name string, entry int, v float64) {
	_, b := img.pos(slot, name, entry)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func (img *Image) PutBool(slot int, name string, entry int, v bool) {
	_, b := img.pos(slot, name, entry)
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

func (img *Image) PutChar(slot int, name string, entry int, v byte) {
	_, b := img.pos(slot, name, entry)
	b[0] = v
}

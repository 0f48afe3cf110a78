package irsdk

// Snapshot is a view of exactly one buffer slot, tagged with the tick count
// observed when the slot was selected.
type Snapshot struct {
	header HeaderView
	data   []byte
	slot   int
	tick   int32
	fresh  bool
}

func (s *Snapshot) Tick() int32 { return s.tick }

func (s *Snapshot) Slot() int { return s.slot }

// Bytes returns the content of the buffer slot
func (s *Snapshot) Bytes() []byte { return s.data }

// Fresh reports whether the tick differs from the previously selected one
func (s *Snapshot) Fresh() bool { return s.fresh }

// Header returns the header the snapshot was selected from
func (s *Snapshot) Header() HeaderView { return s.header }

// Verify re-reads the tick count of the slot. A changed value means the
// writer overwrote the slot while it was decoded.
func (s *Snapshot) Verify() bool {
	return s.header.VarBuf(s.slot).TickCount == s.tick
}

// BufferSelector picks the buffer slot holding the newest data.
type BufferSelector struct {
	lastTick int32
	hasLast  bool
}

func NewBufferSelector() *BufferSelector {
	return &BufferSelector{}
}

// Select returns the slot with the greatest tick count. On equal tick counts
// the lowest slot wins. ok is false if the simulator is not connected or the
// selected slot does not fit into the region.
func (b *BufferSelector) Select(h HeaderView) (snap *Snapshot, ok bool) {
	if !h.Connected() {
		b.hasLast = false
		return nil, false
	}
	numBuf := h.NumBuf()
	if numBuf == 0 {
		return nil, false
	}
	latest := 0
	latestBuf := h.VarBuf(0)
	for i := 1; i < numBuf; i++ {
		if vb := h.VarBuf(i); vb.TickCount > latestBuf.TickCount {
			latest = i
			latestBuf = vb
		}
	}
	mem := h.Region()
	start := int64(latestBuf.BufOffset)
	end := start + int64(h.BufLen())
	if start < 0 || end < start || end > int64(len(mem)) {
		return nil, false
	}
	snap = &Snapshot{
		header: h,
		data:   mem[start:end:end],
		slot:   latest,
		tick:   latestBuf.TickCount,
		fresh:  !b.hasLast || b.lastTick != latestBuf.TickCount,
	}
	b.lastTick = latestBuf.TickCount
	b.hasLast = true
	return snap, true
}

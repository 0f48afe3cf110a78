package irsdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/testsupport/irsdkdata"
)

func header(t *testing.T, img *irsdkdata.Image) irsdk.HeaderView {
	t.Helper()
	h, err := irsdk.NewHeaderView(img.Mem)
	require.NoError(t, err)
	return h
}

func TestBufferSelector_Select(t *testing.T) {
	tests := []struct {
		name     string
		ticks    []int32
		wantSlot int
		wantTick int32
	}{
		{name: "greatest tick", ticks: []int32{5, 9, 3}, wantSlot: 1, wantTick: 9},
		{name: "last slot", ticks: []int32{1, 2, 3}, wantSlot: 2, wantTick: 3},
		{name: "tie first wins", ticks: []int32{7, 7, 2}, wantSlot: 0, wantTick: 7},
		{name: "single slot", ticks: []int32{4}, wantSlot: 0, wantTick: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := irsdkdata.New(irsdkdata.WithNumBuf(len(tt.ticks))).
				AddVar("Speed", irsdk.VarTypeFloat, 1).
				Build()
			for i, tick := range tt.ticks {
				img.SetTick(i, tick)
			}
			snap, ok := irsdk.NewBufferSelector().Select(header(t, img))
			require.True(t, ok)
			assert.Equal(t, tt.wantSlot, snap.Slot())
			assert.Equal(t, tt.wantTick, snap.Tick())
		})
	}
}

func TestBufferSelector_NotConnected(t *testing.T) {
	img := irsdkdata.New(irsdkdata.WithConnected(false)).
		AddVar("Speed", irsdk.VarTypeFloat, 1).
		Build()
	img.SetTick(0, 10)
	snap, ok := irsdk.NewBufferSelector().Select(header(t, img))
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestBufferSelector_Fresh(t *testing.T) {
	img := irsdkdata.New().AddVar("Speed", irsdk.VarTypeFloat, 1).Build()
	img.SetTick(0, 1)
	sel := irsdk.NewBufferSelector()
	h := header(t, img)

	snap, ok := sel.Select(h)
	require.True(t, ok)
	assert.True(t, snap.Fresh())

	snap, ok = sel.Select(h)
	require.True(t, ok)
	assert.False(t, snap.Fresh(), "same tick is not fresh")

	img.SetTick(1, 2)
	snap, ok = sel.Select(h)
	require.True(t, ok)
	assert.True(t, snap.Fresh())
	assert.Equal(t, 1, snap.Slot())
}

func TestSnapshot_Verify(t *testing.T) {
	img := irsdkdata.New().AddVar("Speed", irsdk.VarTypeFloat, 1).Build()
	img.SetTick(0, 3)
	snap, ok := irsdk.NewBufferSelector().Select(header(t, img))
	require.True(t, ok)
	assert.True(t, snap.Verify())
	img.SetTick(0, 6)
	assert.False(t, snap.Verify())
}

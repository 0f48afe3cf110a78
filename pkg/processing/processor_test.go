package processing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk/region/memory"
	"github.com/mpapenbr/irtelemetry/testsupport/irsdkdata"
)

const rosterDoc = `DriverInfo:
 Drivers:
 - UserName: A
   CarNumber: "1"
 - UserName: B
   CarNumber: "2"
 - UserName: C
   CarNumber: "3"
...
`

func sampleImage() *irsdkdata.Image {
	img := irsdkdata.New(irsdkdata.WithSessionDoc(rosterDoc)).
		AddVar("CarIdxLap", irsdk.VarTypeInt, 3).
		AddVar("CarIdxLapDistPct", irsdk.VarTypeFloat, 3).
		AddVar("CarIdxEstTime", irsdk.VarTypeFloat, 3).
		AddVar("RPM", irsdk.VarTypeFloat, 1).
		Build()
	laps := []int32{2, 2, 0}
	pcts := []float32{0.5, 0.8, 0}
	est := []float32{10, 10, 12}
	for slot := range 3 {
		for i := range 3 {
			img.PutInt(slot, "CarIdxLap", i, laps[i])
			img.PutFloat(slot, "CarIdxLapDistPct", i, pcts[i])
			img.PutFloat(slot, "CarIdxEstTime", i, est[i])
		}
		img.PutFloat(slot, "RPM", 0, 6500)
	}
	img.SetTick(0, 5)
	img.SetTick(1, 9)
	img.SetTick(2, 3)
	return img
}

func setup(img *irsdkdata.Image) (*memory.Platform, *irsdk.Connection) {
	p := memory.New()
	p.SetSignal(irsdk.DataValidEventName, true)
	p.Publish(irsdk.MemMapFileName, img.Mem)
	return p, irsdk.NewConnection(p)
}

func TestProcessor_Poll(t *testing.T) {
	img := sampleImage()
	_, conn := setup(img)
	out := make(chan *Frame, 1)
	proc := NewProcessor(conn, WithOutput(out))

	frame, err := proc.Poll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, int32(9), frame.Tick)
	assert.Equal(t, 1, frame.Slot)
	assert.Equal(t, proc.Generation(), frame.Generation)
	assert.Equal(t, int32(1), frame.SessionUpdate)
	require.Len(t, frame.Timing, 3)
	names := []string{frame.Timing[0].Driver.UserName, frame.Timing[1].Driver.UserName, frame.Timing[2].Driver.UserName}
	assert.Equal(t, []string{"B", "A", "C"}, names)
	assert.Equal(t, []float32{0, 0, 2}, []float32{frame.Timing[0].Interval, frame.Timing[1].Interval, frame.Timing[2].Interval})
	assert.Equal(t, float32(6500), frame.Telemetry.Pedals.RPM)
	assert.Same(t, frame, <-out)
}

func TestProcessor_NotConnected(t *testing.T) {
	img := sampleImage()
	img.SetConnected(false)
	_, conn := setup(img)
	frame, err := NewProcessor(conn).Poll(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, frame)
}

func TestProcessor_NoRegion(t *testing.T) {
	frame, err := NewProcessor(irsdk.NewConnection(memory.New())).Poll(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, frame)
}

func TestProcessor_SkipStale(t *testing.T) {
	img := sampleImage()
	_, conn := setup(img)
	proc := NewProcessor(conn, WithSkipStale(true))

	frame, err := proc.Poll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)

	frame, err = proc.Poll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, frame, "same tick")

	img.SetTick(2, 10)
	frame, err = proc.Poll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, 2, frame.Slot)
}

func TestProcessor_TornRead(t *testing.T) {
	img := sampleImage()
	_, conn := setup(img)
	proc := NewProcessor(conn)
	proc.afterDecode = func() {
		img.SetTick(1, img.Tick(1)+1)
	}
	frame, err := proc.Poll(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, frame, "frame discarded")

	proc.afterDecode = nil
	frame, err = proc.Poll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame, "retried next cycle")
	assert.Equal(t, int32(10), frame.Tick)
}

func TestProcessor_UnsupportedType(t *testing.T) {
	img := sampleImage()
	img.SetVarType(0, irsdk.VarType(17))
	_, conn := setup(img)
	frame, err := NewProcessor(conn).Poll(context.Background())
	assert.ErrorIs(t, err, irsdk.ErrUnsupportedType)
	assert.Nil(t, frame)
}

func TestProcessor_Reconnect(t *testing.T) {
	img := sampleImage()
	p, conn := setup(img)
	proc := NewProcessor(conn)

	frame, err := proc.Poll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)
	first := frame.Generation

	img.SetConnected(false)
	frame, err = proc.Poll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, frame)

	next := sampleImage()
	p.Publish(irsdk.MemMapFileName, next.Mem)
	frame, err = proc.Poll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.NotEqual(t, first, frame.Generation)
	assert.Len(t, frame.Timing, 3)
}

package irsdk_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/testsupport/irsdkdata"
)

// sampleImage returns an image with one var of each type in slot 0
func sampleImage() *irsdkdata.Image {
	img := irsdkdata.New().
		AddVar("Speed", irsdk.VarTypeFloat, 1).
		AddVar("Gear", irsdk.VarTypeInt, 1).
		AddVar("SessionTime", irsdk.VarTypeDouble, 1).
		AddVar("OnPitRoad", irsdk.VarTypeBool, 1).
		AddVar("Flag", irsdk.VarTypeChar, 1).
		AddVar("SessionFlags", irsdk.VarTypeBitField, 1).
		AddVar("CarIdxLap", irsdk.VarTypeInt, 4).
		Build()
	img.SetTick(0, 1)
	return img
}

func newReader(t *testing.T, img *irsdkdata.Image) *irsdk.VarReader {
	t.Helper()
	h := header(t, img)
	cat, err := irsdk.BuildCatalog(h)
	require.NoError(t, err)
	snap, ok := irsdk.NewBufferSelector().Select(h)
	require.True(t, ok)
	return irsdk.NewVarReader(cat, snap)
}

func TestVarReader_Coercion(t *testing.T) {
	img := sampleImage()
	img.PutFloat(0, "Speed", 0, 12.5)
	img.PutInt(0, "Gear", 0, -1)
	img.PutDouble(0, "SessionTime", 0, 1234.75)
	img.PutBool(0, "OnPitRoad", 0, true)
	img.PutChar(0, "Flag", 0, 200)
	img.PutInt(0, "SessionFlags", 0, 0x10)
	r := newReader(t, img)

	assert.Equal(t, 12, r.Int("Speed"))
	assert.Equal(t, float32(12.5), r.Float("Speed"))
	assert.Equal(t, 12.5, r.Double("Speed"))
	assert.True(t, r.Bool("Speed"))

	assert.Equal(t, -1, r.Int("Gear"))
	assert.Equal(t, float32(-1), r.Float("Gear"))

	assert.Equal(t, 1234, r.Int("SessionTime"))
	assert.Equal(t, 1234.75, r.Double("SessionTime"))

	assert.True(t, r.Bool("OnPitRoad"))
	assert.Equal(t, 1, r.Int("OnPitRoad"))

	assert.Equal(t, 200, r.Int("Flag"))
	assert.Equal(t, 16, r.Int("SessionFlags"))
	assert.NoError(t, r.Err())
}

func TestVarReader_Arrays(t *testing.T) {
	img := sampleImage()
	for i := range 4 {
		img.PutInt(0, "CarIdxLap", i, int32(10+i))
	}
	r := newReader(t, img)
	for i := range 4 {
		assert.Equal(t, 10+i, r.IntAt("CarIdxLap", i))
	}
	assert.Equal(t, 0, r.IntAt("CarIdxLap", 4), "out of range entry")
	assert.Equal(t, 0, r.IntAt("CarIdxLap", -1), "negative entry")

	_, err := r.DecodeName("CarIdxLap", 4)
	assert.ErrorIs(t, err, irsdk.ErrOutOfBounds)
}

func TestVarReader_UnknownName(t *testing.T) {
	r := newReader(t, sampleImage())

	assert.Equal(t, 0, r.Int("NoSuchVar"))
	assert.Equal(t, float32(0), r.Float("NoSuchVar"))
	assert.Equal(t, 0.0, r.Double("NoSuchVar"))
	assert.False(t, r.Bool("NoSuchVar"))
	assert.NoError(t, r.Err())

	assert.True(t, r.Lookup("NoSuchVar").IsUnset())
	assert.True(t, r.Lookup("Speed").IsValue())

	_, err := r.DecodeName("NoSuchVar", 0)
	assert.ErrorIs(t, err, irsdk.ErrUnknownVariable)
	assert.NotErrorIs(t, err, irsdk.ErrUnsupportedType)
}

func TestVarReader_UnsupportedType(t *testing.T) {
	img := sampleImage()
	img.SetVarType(0, irsdk.VarType(42))
	r := newReader(t, img)

	assert.Equal(t, 0, r.Int("Speed"))
	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, irsdk.ErrUnsupportedType)
	assert.NotErrorIs(t, err, irsdk.ErrUnknownVariable)

	var typeErr *irsdk.UnsupportedVarTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "Speed", typeErr.Name)
	assert.Equal(t, irsdk.VarType(42), typeErr.Tag)

	_, err = r.DecodeName("Speed", 0)
	assert.ErrorIs(t, err, irsdk.ErrUnsupportedType)
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name string
		v    irsdk.Value
		want int
	}{
		{name: "nil", v: nil, want: 0},
		{name: "negative float truncates toward zero", v: irsdk.FloatValue(-2.9), want: -2},
		{name: "NaN", v: irsdk.FloatValue(float32(math.NaN())), want: 0},
		{name: "saturate high", v: irsdk.DoubleValue(1e12), want: math.MaxInt32},
		{name: "saturate low", v: irsdk.DoubleValue(-1e12), want: math.MinInt32},
		{name: "bool", v: irsdk.BoolValue(true), want: 1},
		{name: "bitfield high bit", v: irsdk.BitFieldValue(0x80000000), want: math.MinInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, irsdk.AsInt(tt.v))
		})
	}
}

func TestReadConsistent(t *testing.T) {
	img := sampleImage()
	img.PutFloat(0, "Speed", 0, 50)
	h := header(t, img)
	cat, err := irsdk.BuildCatalog(h)
	require.NoError(t, err)

	t.Run("stable", func(t *testing.T) {
		snap, ok := irsdk.NewBufferSelector().Select(h)
		require.True(t, ok)
		var speed float32
		err := irsdk.ReadConsistent(cat, snap, func(r *irsdk.VarReader) error {
			speed = r.Float("Speed")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, float32(50), speed)
	})
	t.Run("torn", func(t *testing.T) {
		snap, ok := irsdk.NewBufferSelector().Select(h)
		require.True(t, ok)
		err := irsdk.ReadConsistent(cat, snap, func(r *irsdk.VarReader) error {
			_ = r.Float("Speed")
			// writer updates the slot while we decode
			img.SetTick(snap.Slot(), snap.Tick()+1)
			return nil
		})
		assert.ErrorIs(t, err, irsdk.ErrTornRead)
	})
}

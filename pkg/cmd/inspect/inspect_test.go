package inspect

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/testsupport/irsdkdata"
)

const sessionDoc = `WeekendInfo:
 TrackName: spa
 TrackID: 163
 TrackDisplayName: Circuit de Spa-Francorchamps
 TrackConfigName: Grand Prix Pits
CameraInfo:
 Groups:
 - GroupNum: 1
   GroupName: Nose
DriverInfo:
 Drivers:
 - UserName: Pace Car
   CarNumber: "0"
   CarIsPaceCar: 1
 - UserName: Alice
   CarNumber: "11"
 - UserName: Bob
   CarNumber: "7"
...
`

func writeDump(t *testing.T) string {
	t.Helper()
	img := irsdkdata.New(irsdkdata.WithSessionDoc(sessionDoc)).
		AddVar("CarIdxLap", irsdk.VarTypeInt, 3).
		AddVar("CarIdxLapDistPct", irsdk.VarTypeFloat, 3).
		AddVar("CarIdxTrackSurface", irsdk.VarTypeInt, 3).
		AddVar("Gear", irsdk.VarTypeInt, 1).
		Build()
	img.SetTick(0, 100)
	img.PutInt(0, "CarIdxLap", 1, 3)
	img.PutInt(0, "CarIdxLap", 2, 4)
	img.PutInt(0, "CarIdxTrackSurface", 0, int32(irsdk.TrkLocNotInWorld))
	img.PutInt(0, "CarIdxTrackSurface", 1, int32(irsdk.TrkLocOnTrack))
	img.PutInt(0, "CarIdxTrackSurface", 2, int32(irsdk.TrkLocOnTrack))
	img.PutInt(0, "Gear", 0, 5)

	path := filepath.Join(t.TempDir(), "irsdk.bin")
	require.NoError(t, os.WriteFile(path, img.Mem, 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := log.Default()
	t.Cleanup(func() { log.ResetDefault(prev) })
	withValues, rawDoc, allCars = false, false, false

	cmd := NewInspectCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInspectVars(t *testing.T) {
	out, err := run(t, "-f", writeDump(t), "vars", "--values")
	require.NoError(t, err)
	assert.Contains(t, out, "CarIdxTrackSurface")
	assert.Contains(t, out, "Gear")
	assert.Contains(t, strings.ToLower(out), "4 vars")
}

func TestInspectTiming(t *testing.T) {
	out, err := run(t, "-f", writeDump(t), "timing")
	require.NoError(t, err)
	assert.NotContains(t, out, "Pace Car", "not in world")
	assert.Less(t, strings.Index(out, "Bob"), strings.Index(out, "Alice"))

	out, err = run(t, "-f", writeDump(t), "timing", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Pace Car")
}

func TestInspectSession(t *testing.T) {
	dump := writeDump(t)
	out, err := run(t, "-f", dump, "session")
	require.NoError(t, err)
	assert.Contains(t, out, "Circuit de Spa-Francorchamps")
	assert.Contains(t, out, "pace car")
	assert.Contains(t, out, "Nose")

	out, err = run(t, "-f", dump, "session", "--raw")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "..."), out)
}

func TestInspectTelemetry(t *testing.T) {
	out, err := run(t, "-f", writeDump(t), "telemetry")
	require.NoError(t, err)
	assert.Contains(t, out, "Gear")
}

func TestInspectMissingDump(t *testing.T) {
	_, err := run(t, "-f", filepath.Join(t.TempDir(), "missing.bin"), "vars")
	assert.ErrorIs(t, err, errNotConnected)
}

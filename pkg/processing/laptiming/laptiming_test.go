//nolint:lll // table tests
package laptiming

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/session"
	"github.com/mpapenbr/irtelemetry/testsupport/irsdkdata"
)

func TestRank(t *testing.T) {
	type car struct {
		name string
		lap  int
		pct  float32
		est  float32
	}
	tests := []struct {
		name          string
		cars          []car
		wantOrder     []string
		wantIntervals []float32
	}{
		{
			name:          "lap then pct",
			cars:          []car{{"A", 2, 0.5, 0}, {"B", 2, 0.8, 0}, {"C", 0, 0.0, 0}},
			wantOrder:     []string{"B", "A", "C"},
			wantIntervals: []float32{0, 0, 0},
		},
		{
			name:          "interval to car ahead",
			cars:          []car{{"A", 3, 0.3, 10}, {"B", 3, 0.2, 10}, {"C", 3, 0.1, 12}},
			wantOrder:     []string{"A", "B", "C"},
			wantIntervals: []float32{0, 0, 2},
		},
		{
			name:          "interval is absolute",
			cars:          []car{{"A", 1, 0.9, 30}, {"B", 1, 0.5, 31.5}, {"C", 1, 0.4, 31}},
			wantOrder:     []string{"A", "B", "C"},
			wantIntervals: []float32{0, 1.5, 0.5},
		},
		{
			name:          "exact ties keep order",
			cars:          []car{{"A", 1, 0.5, 0}, {"B", 2, 0.1, 0}, {"C", 1, 0.5, 0}, {"D", 1, 0.5, 0}},
			wantOrder:     []string{"B", "A", "C", "D"},
			wantIntervals: []float32{0, 0, 0, 0},
		},
		{
			name:          "more laps beat higher pct",
			cars:          []car{{"A", 4, 0.99, 0}, {"B", 5, 0.01, 0}},
			wantOrder:     []string{"B", "A"},
			wantIntervals: []float32{0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]Row, len(tt.cars))
			for i, c := range tt.cars {
				rows[i] = Row{CarIdx: i, Lap: c.lap, LapDistPct: c.pct, EstTime: c.est, Driver: session.RosterEntry{UserName: c.name}}
			}
			Rank(rows)
			order := make([]string, len(rows))
			intervals := make([]float32, len(rows))
			for i := range rows {
				order[i] = rows[i].Driver.UserName
				intervals[i] = rows[i].Interval
				assert.Equal(t, i+1, rows[i].Rank)
			}
			assert.Equal(t, tt.wantOrder, order)
			assert.InDeltaSlice(t, tt.wantIntervals, intervals, 1e-6)
		})
	}
}

func timingImage(numCars int) *irsdkdata.Image {
	img := irsdkdata.New().
		AddVar(chanPosition, irsdk.VarTypeInt, numCars).
		AddVar(chanClassPosition, irsdk.VarTypeInt, numCars).
		AddVar(chanEstTime, irsdk.VarTypeFloat, numCars).
		AddVar(chanF2Time, irsdk.VarTypeFloat, numCars).
		AddVar(chanLap, irsdk.VarTypeInt, numCars).
		AddVar(chanLapDistPct, irsdk.VarTypeFloat, numCars).
		AddVar(chanLastLapTime, irsdk.VarTypeFloat, numCars).
		AddVar(chanBestLapTime, irsdk.VarTypeFloat, numCars).
		AddVar(chanTrackSurface, irsdk.VarTypeInt, numCars).
		Build()
	img.SetTick(0, 1)
	return img
}

func reader(t *testing.T, img *irsdkdata.Image) *irsdk.VarReader {
	t.Helper()
	h, err := irsdk.NewHeaderView(img.Mem)
	require.NoError(t, err)
	cat, err := irsdk.BuildCatalog(h)
	require.NoError(t, err)
	snap, ok := irsdk.NewBufferSelector().Select(h)
	require.True(t, ok)
	return irsdk.NewVarReader(cat, snap)
}

func TestEngine_Compute(t *testing.T) {
	img := timingImage(3)
	type carData struct {
		pos, lap int32
		pct, est float32
		last     float32
		surface  irsdk.TrkLoc
	}
	data := []carData{
		{pos: 2, lap: 2, pct: 0.5, est: 40, last: 83.5, surface: irsdk.TrkLocOnTrack},
		{pos: 1, lap: 2, pct: 0.8, est: 64, last: 82.25, surface: irsdk.TrkLocOnTrack},
		{pos: 0, lap: 0, pct: 0, est: 0, last: -1, surface: irsdk.TrkLocNotInWorld},
	}
	for i, d := range data {
		img.PutInt(0, chanPosition, i, d.pos)
		img.PutInt(0, chanClassPosition, i, d.pos)
		img.PutInt(0, chanLap, i, d.lap)
		img.PutFloat(0, chanLapDistPct, i, d.pct)
		img.PutFloat(0, chanEstTime, i, d.est)
		img.PutFloat(0, chanLastLapTime, i, d.last)
		img.PutInt(0, chanTrackSurface, i, int32(d.surface))
	}
	roster := []session.RosterEntry{
		{CarIdx: 0, UserName: "A", CarNumber: "10"},
		{CarIdx: 1, UserName: "B", CarNumber: "11"},
		{CarIdx: 2, UserName: "C", CarNumber: "12"},
	}

	for _, workers := range []int{0, 1, 8} {
		rows, err := NewEngine(WithWorkers(workers)).Compute(context.Background(), reader(t, img), roster)
		require.NoError(t, err)
		want := []Row{
			{Rank: 1, CarIdx: 1, Position: 1, ClassPosition: 1, Lap: 2, LapDistPct: 0.8, EstTime: 64, LastLapTime: 82.25, TrackSurface: irsdk.TrkLocOnTrack, Driver: roster[1]},
			{Rank: 2, CarIdx: 0, Position: 2, ClassPosition: 2, Lap: 2, LapDistPct: 0.5, EstTime: 40, LastLapTime: 83.5, Interval: 24, TrackSurface: irsdk.TrkLocOnTrack, Driver: roster[0]},
			{Rank: 3, CarIdx: 2, LastLapTime: -1, Interval: 40, TrackSurface: irsdk.TrkLocNotInWorld, Driver: roster[2]},
		}
		if diff := cmp.Diff(want, rows); diff != "" {
			t.Errorf("Compute(workers=%d) mismatch (-want +got):\n%s", workers, diff)
		}

		active := ActiveEntries(rows)
		assert.Len(t, active, 2)

		byPos := ByReportedPosition(rows)
		assert.Equal(t, []int{1, 2, 0}, []int{byPos[0].Position, byPos[1].Position, byPos[2].Position})
	}
}

func TestEngine_ComputeMissingChannels(t *testing.T) {
	img := irsdkdata.New().AddVar("Speed", irsdk.VarTypeFloat, 1).Build()
	img.SetTick(0, 1)
	roster := []session.RosterEntry{{CarIdx: 0, UserName: "A"}, {CarIdx: 1, UserName: "B"}}
	rows, err := NewEngine().Compute(context.Background(), reader(t, img), roster)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Driver.UserName)
	assert.Equal(t, irsdk.TrkLocOffTrack, rows[0].TrackSurface)
}

func TestEngine_ComputeCanceled(t *testing.T) {
	img := timingImage(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().Compute(ctx, reader(t, img), []session.RosterEntry{{CarIdx: 0}, {CarIdx: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ComputeEmptyRoster(t *testing.T) {
	rows, err := NewEngine().Compute(context.Background(), reader(t, timingImage(1)), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFormatLapTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "-"},
		{-1, "-"},
		{5.25, "05.250"},
		{59.999, "59.999"},
		{83.5, "01'23.500"},
		{125.004, "02'05.004"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLapTime(tt.seconds), "seconds %v", tt.seconds)
	}
}

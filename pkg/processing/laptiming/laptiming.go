// Package laptiming computes the live timing table from the CarIdx*
// telemetry arrays and the session roster.
package laptiming

import (
	"cmp"
	"context"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/session"
)

// telemetry channels read per car index
const (
	chanPosition      = "CarIdxPosition"
	chanClassPosition = "CarIdxClassPosition"
	chanEstTime       = "CarIdxEstTime"
	chanF2Time        = "CarIdxF2Time"
	chanLap           = "CarIdxLap"
	chanLapDistPct    = "CarIdxLapDistPct"
	chanLastLapTime   = "CarIdxLastLapTime"
	chanBestLapTime   = "CarIdxBestLapTime"
	chanTrackSurface  = "CarIdxTrackSurface"
)

// Row is the timing information of one car
type Row struct {
	Rank          int                 `json:"rank"` // 1-based, by completed laps and lap distance
	CarIdx        int                 `json:"carIdx"`
	Position      int                 `json:"position"` // as reported by the simulator
	ClassPosition int                 `json:"classPosition"`
	Lap           int                 `json:"lap"`
	LapDistPct    float32             `json:"lapDistPct"`
	EstTime       float32             `json:"estTime"`
	F2Time        float32             `json:"f2Time"`
	LastLapTime   float32             `json:"lastLapTime"`
	BestLapTime   float32             `json:"bestLapTime"`
	Interval      float32             `json:"interval"` // seconds to the car ranked ahead
	TrackSurface  irsdk.TrkLoc        `json:"trackSurface"`
	Driver        session.RosterEntry `json:"driver"`
}

type Engine struct {
	workers int
	l       *log.Logger
}

type Option func(*Engine)

// WithWorkers limits the number of concurrent per car reads
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.l = l
	}
}

func NewEngine(opts ...Option) *Engine {
	ret := &Engine{
		workers: 8,
		l:       log.Default().Named("laptiming"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type channels struct {
	position, classPosition, estTime, f2Time   int
	lap, lapDistPct, lastLap, bestLap, surface int
}

func resolve(cat *irsdk.Catalog) channels {
	return channels{
		position:      cat.Index(chanPosition),
		classPosition: cat.Index(chanClassPosition),
		estTime:       cat.Index(chanEstTime),
		f2Time:        cat.Index(chanF2Time),
		lap:           cat.Index(chanLap),
		lapDistPct:    cat.Index(chanLapDistPct),
		lastLap:       cat.Index(chanLastLapTime),
		bestLap:       cat.Index(chanBestLapTime),
		surface:       cat.Index(chanTrackSurface),
	}
}

// Compute returns one ranked row per roster entry
func (e *Engine) Compute(
	ctx context.Context,
	r *irsdk.VarReader,
	roster []session.RosterEntry,
) ([]Row, error) {
	if len(roster) == 0 {
		return []Row{}, nil
	}
	ch := resolve(r.Catalog())
	rows := make([]Row, len(roster))

	g, gCtx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i := range roster {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			// each worker writes its own element only
			rows[i] = gather(r, &ch, &roster[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	Rank(rows)
	return rows, nil
}

func gather(r *irsdk.VarReader, ch *channels, entry *session.RosterEntry) Row {
	idx := entry.CarIdx
	return Row{
		CarIdx:        idx,
		Position:      r.IntVar(ch.position, idx),
		ClassPosition: r.IntVar(ch.classPosition, idx),
		Lap:           r.IntVar(ch.lap, idx),
		LapDistPct:    r.FloatVar(ch.lapDistPct, idx),
		EstTime:       r.FloatVar(ch.estTime, idx),
		F2Time:        r.FloatVar(ch.f2Time, idx),
		LastLapTime:   r.FloatVar(ch.lastLap, idx),
		BestLapTime:   r.FloatVar(ch.bestLap, idx),
		TrackSurface:  irsdk.TrkLoc(r.IntVar(ch.surface, idx)),
		Driver:        *entry,
	}
}

// Rank sorts rows by completed laps and lap distance (both descending),
// assigns the rank and computes the interval to the car ahead.
// Rows with equal keys keep their order.
func Rank(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Lap, a.Lap); c != 0 {
			return c
		}
		return cmp.Compare(b.LapDistPct, a.LapDistPct)
	})
	for i := range rows {
		rows[i].Rank = i + 1
		if i == 0 {
			rows[i].Interval = 0
			continue
		}
		rows[i].Interval = float32(math.Abs(float64(rows[i-1].EstTime) - float64(rows[i].EstTime)))
	}
}

// ActiveEntries returns the rows of cars located in the pit stall or on track
func ActiveEntries(rows []Row) []Row {
	ret := make([]Row, 0, len(rows))
	for i := range rows {
		if rows[i].TrackSurface >= irsdk.TrkLocInPitStall {
			ret = append(ret, rows[i])
		}
	}
	return ret
}

// ByReportedPosition returns a copy of rows ordered by the position reported
// by the simulator. Rows without position (0) are moved to the end.
func ByReportedPosition(rows []Row) []Row {
	ret := slices.Clone(rows)
	slices.SortStableFunc(ret, func(a, b Row) int {
		switch {
		case a.Position == b.Position:
			return 0
		case a.Position == 0:
			return 1
		case b.Position == 0:
			return -1
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return ret
}

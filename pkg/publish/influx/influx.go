// Package influx writes the telemetry of each frame as InfluxDB points.
package influx

import (
	"context"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/samber/lo"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/processing"
	"github.com/mpapenbr/irtelemetry/pkg/processing/telemetry"
	"github.com/mpapenbr/irtelemetry/pkg/publish"
)

const (
	measurementTelemetry = "telemetry"
	measurementTiming    = "timing"
)

type Sink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	now      func() time.Time
	done     chan struct{}
	l        *log.Logger
}

var _ publish.Sink = (*Sink)(nil)

type Option func(*Sink)

func WithLogger(l *log.Logger) Option {
	return func(s *Sink) {
		s.l = l
	}
}

func WithBatchSize(size uint) Option {
	return func(s *Sink) {
		s.client.Options().SetBatchSize(size)
	}
}

func New(url, token, org, bucket string, opts ...Option) *Sink {
	s := &Sink{
		client: influxdb2.NewClient(url, token),
		now:    time.Now,
		done:   make(chan struct{}),
		l:      log.Default().Named("publish.influx"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writeAPI = s.client.WriteAPI(org, bucket)
	go func() {
		errorsCh := s.writeAPI.Errors()
		for {
			select {
			case <-s.done:
				return
			case err := <-errorsCh:
				s.l.Warn("write error", log.ErrorField(err))
			}
		}
	}()
	return s
}

func (s *Sink) Name() string { return "influx" }

func (s *Sink) Publish(ctx context.Context, frame *processing.Frame) error {
	for _, p := range Points(frame, s.now()) {
		s.writeAPI.WritePoint(p)
	}
	return nil
}

func (s *Sink) Close() error {
	s.writeAPI.Flush()
	close(s.done)
	s.client.Close()
	return nil
}

// Points converts the frame into one telemetry point and one timing point
// per car.
func Points(frame *processing.Frame, ts time.Time) []*write.Point {
	ret := make([]*write.Point, 0, len(frame.Timing)+1)
	ret = append(ret, influxdb2.NewPoint(
		measurementTelemetry,
		tags(map[string]string{
			"skies":       frame.Telemetry.Weather.Skies,
			"weatherType": frame.Telemetry.Weather.WeatherType,
		}),
		telemetryFields(&frame.Telemetry),
		ts))
	for i := range frame.Timing {
		row := &frame.Timing[i]
		ret = append(ret, influxdb2.NewPoint(
			measurementTiming,
			tags(map[string]string{
				"carIdx":    strconv.Itoa(row.CarIdx),
				"carNumber": row.Driver.CarNumber,
			}),
			map[string]any{
				"rank":        row.Rank,
				"position":    row.Position,
				"lap":         row.Lap,
				"lapDistPct":  row.LapDistPct,
				"interval":    row.Interval,
				"lastLapTime": row.LastLapTime,
				"bestLapTime": row.BestLapTime,
			},
			ts))
	}
	return ret
}

// line protocol does not allow empty tag values
func tags(m map[string]string) map[string]string {
	return lo.OmitByValues(m, []string{""})
}

func telemetryFields(r *telemetry.Record) map[string]any {
	fields := map[string]any{
		"throttle":     r.Pedals.Throttle,
		"brake":        r.Pedals.Brake,
		"clutch":       r.Pedals.Clutch,
		"gear":         r.Pedals.Gear,
		"rpm":          r.Pedals.RPM,
		"speed":        r.Pedals.Speed,
		"fuelLevel":    r.Fuel.FuelLevel,
		"fuelLevelPct": r.Fuel.FuelLevelPct,
		"latAccel":     r.Fuel.LatAccel,
		"longAccel":    r.Fuel.LongAccel,
		"steering":     r.Fuel.SteeringWheelAngle,
		"airTemp":      r.Weather.AirTemp,
		"trackTemp":    r.Weather.TrackTemp,
		"sessionTime":  r.Session.SessionTime,
		"lap":          r.Session.Lap,
		"lapDistPct":   r.Session.LapDistPct,
	}
	for name, tyre := range map[string]*telemetry.Tyre{
		"lf": &r.LF, "rf": &r.RF, "lr": &r.LR, "rr": &r.RR,
	} {
		fields[name+"TempM"] = tyre.TempM
		fields[name+"WearM"] = tyre.WearM
		fields[name+"Pressure"] = tyre.Pressure
	}
	return fields
}

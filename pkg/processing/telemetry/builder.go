// Package telemetry assembles the flat per tick telemetry record.
package telemetry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
)

// Tyres lists the tyre corners in record order
var Tyres = []string{"LF", "RF", "LR", "RR"}

var tyreChannels = []string{
	"wearL", "wearM", "wearR",
	"tempL", "tempM", "tempR",
	"tempCL", "tempCM", "tempCR",
	"pressure", "speed",
}

// Channels returns all channel names read by the builder
func Channels() []string {
	ret := []string{
		"Throttle", "Brake", "Clutch", "Gear", "ShiftGrindRPM", "RPM", "Speed",
		"FuelLevel", "FuelLevelPct", "FuelUsePerHour",
		"LatAccel", "LongAccel", "SteeringWheelAngle",
		"AirPressure", "AirTemp", "RelativeHumidity", "Skies",
		"TrackTemp", "WindDir", "WindVel", "WeatherType",
		"SessionTime", "SessionTimeRemain", "LapBestLapTime", "Lap",
		"LapCurrentLapTime", "LapBestLap", "LapDistPct",
	}
	for _, tyre := range Tyres {
		for _, c := range tyreChannels {
			ret = append(ret, tyre+c)
		}
	}
	return ret
}

// Builder resolves the channel names once per catalog generation
type Builder struct {
	mu         sync.Mutex
	generation uuid.UUID
	idx        map[string]int
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) indices(cat *irsdk.Catalog) map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.idx != nil && b.generation == cat.Generation() {
		return b.idx
	}
	names := Channels()
	idx := make(map[string]int, len(names))
	for _, name := range names {
		idx[name] = cat.Index(name)
	}
	b.generation = cat.Generation()
	b.idx = idx
	return idx
}

// Build reads the record from r. Missing channels yield zero values.
func (b *Builder) Build(r *irsdk.VarReader) Record {
	idx := b.indices(r.Catalog())
	f := func(name string) float32 { return r.FloatVar(idx[name], 0) }
	i := func(name string) int { return r.IntVar(idx[name], 0) }
	d := func(name string) float64 { return r.DoubleVar(idx[name], 0) }
	tyre := func(corner string) Tyre {
		return Tyre{
			WearL:    f(corner + "wearL"),
			WearM:    f(corner + "wearM"),
			WearR:    f(corner + "wearR"),
			TempL:    f(corner + "tempL"),
			TempM:    f(corner + "tempM"),
			TempR:    f(corner + "tempR"),
			TempCL:   f(corner + "tempCL"),
			TempCM:   f(corner + "tempCM"),
			TempCR:   f(corner + "tempCR"),
			Pressure: f(corner + "pressure"),
			Speed:    f(corner + "speed"),
		}
	}
	return Record{
		Pedals: PedalsAndSpeed{
			Throttle:      f("Throttle"),
			Brake:         f("Brake"),
			Clutch:        f("Clutch"),
			Gear:          i("Gear"),
			ShiftGrindRPM: f("ShiftGrindRPM"),
			RPM:           f("RPM"),
			Speed:         f("Speed"),
		},
		Fuel: FuelAndAngles{
			FuelLevel:          f("FuelLevel"),
			FuelLevelPct:       f("FuelLevelPct"),
			FuelUsePerHour:     f("FuelUsePerHour"),
			LatAccel:           f("LatAccel"),
			LongAccel:          f("LongAccel"),
			SteeringWheelAngle: f("SteeringWheelAngle"),
		},
		LF: tyre("LF"),
		RF: tyre("RF"),
		LR: tyre("LR"),
		RR: tyre("RR"),
		Weather: Weather{
			AirPressure:      f("AirPressure"),
			AirTemp:          f("AirTemp"),
			RelativeHumidity: f("RelativeHumidity"),
			Skies:            SkiesLabel(i("Skies")),
			TrackTemp:        f("TrackTemp"),
			WindDir:          f("WindDir"),
			WindVel:          f("WindVel"),
			WeatherType:      WeatherTypeLabel(i("WeatherType")),
		},
		Session: Session{
			SessionTime:       d("SessionTime"),
			SessionTimeRemain: d("SessionTimeRemain"),
			LapBestLapTime:    f("LapBestLapTime"),
			Lap:               i("Lap"),
			LapCurrentLapTime: f("LapCurrentLapTime"),
			LapBestLap:        i("LapBestLap"),
			LapDistPct:        f("LapDistPct"),
		},
	}
}

// Package render prints timing, catalog and session data as text tables.
package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
	"github.com/mpapenbr/irtelemetry/pkg/processing/laptiming"
	"github.com/mpapenbr/irtelemetry/pkg/processing/telemetry"
	"github.com/mpapenbr/irtelemetry/pkg/session"
)

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// Timing renders the ranked rows
func Timing(w io.Writer, rows []laptiming.Row) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"#", "Car", "Driver", "Lap", "Pct", "Interval", "Last", "Best", "Surface"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for i := range rows {
		r := &rows[i]
		t.AppendRow(table.Row{
			r.Rank,
			r.Driver.CarNumber,
			r.Driver.UserName,
			r.Lap,
			fmt.Sprintf("%.3f", r.LapDistPct),
			interval(r),
			laptiming.FormatLapTime(float64(r.LastLapTime)),
			laptiming.FormatLapTime(float64(r.BestLapTime)),
			r.TrackSurface,
		})
	}
	t.Render()
}

func interval(r *laptiming.Row) string {
	if r.Rank == 1 {
		return "-"
	}
	return fmt.Sprintf("%.2f", r.Interval)
}

// Vars renders the catalog descriptors. If reader is not nil the current
// value of the first entry is added.
func Vars(w io.Writer, descs []irsdk.VarDesc, reader *irsdk.VarReader) {
	t := newWriter(w)
	header := table.Row{"Idx", "Name", "Type", "Count", "Offset", "Unit", "Description"}
	if reader != nil {
		header = append(header, "Value")
	}
	t.AppendHeader(header)
	for _, d := range descs {
		row := table.Row{d.Index, d.Name, d.Type, d.Count, d.Offset, d.Unit, d.Desc}
		if reader != nil {
			if v, err := reader.Decode(d, 0); err == nil {
				row = append(row, fmt.Sprintf("%v", v))
			} else {
				row = append(row, err.Error())
			}
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d vars", len(descs))})
	t.Render()
}

// Roster renders the drivers of the session
func Roster(w io.Writer, roster []session.RosterEntry) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"CarIdx", "Car", "Driver", "Team", "Class", "iRating", "License", "Flags"})
	for i := range roster {
		e := &roster[i]
		t.AppendRow(table.Row{
			e.CarIdx, e.CarNumber, e.UserName, e.TeamName, e.CarClassID,
			e.IRating, e.LicString, rosterFlags(e),
		})
	}
	t.Render()
}

func rosterFlags(e *session.RosterEntry) string {
	switch {
	case e.IsPaceCar:
		return "pace car"
	case e.IsSpectator:
		return "spectator"
	case e.IsAI:
		return "ai"
	}
	return ""
}

// Cameras renders the camera groups
func Cameras(w io.Writer, cams []session.CameraEntry) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Group", "Name"})
	for _, c := range cams {
		t.AppendRow(table.Row{c.GroupNum, c.GroupName})
	}
	t.Render()
}

// Telemetry renders the player's car telemetry as name/value pairs
func Telemetry(w io.Writer, rec *telemetry.Record) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Channel", "Value"})
	add := func(name string, v any) { t.AppendRow(table.Row{name, v}) }
	add("Speed", fmt.Sprintf("%.1f", rec.Pedals.Speed))
	add("RPM", fmt.Sprintf("%.0f", rec.Pedals.RPM))
	add("Gear", rec.Pedals.Gear)
	add("Throttle", fmt.Sprintf("%.2f", rec.Pedals.Throttle))
	add("Brake", fmt.Sprintf("%.2f", rec.Pedals.Brake))
	add("Fuel", fmt.Sprintf("%.2f", rec.Fuel.FuelLevel))
	add("Lap", rec.Session.Lap)
	add("Lap time", laptiming.FormatLapTime(float64(rec.Session.LapCurrentLapTime)))
	add("Best lap", laptiming.FormatLapTime(float64(rec.Session.LapBestLapTime)))
	t.AppendSeparator()
	add("Air temp", fmt.Sprintf("%.1f", rec.Weather.AirTemp))
	add("Track temp", fmt.Sprintf("%.1f", rec.Weather.TrackTemp))
	add("Skies", rec.Weather.Skies)
	add("Weather", rec.Weather.WeatherType)
	t.AppendSeparator()
	for _, tyre := range []struct {
		name string
		t    *telemetry.Tyre
	}{{"LF", &rec.LF}, {"RF", &rec.RF}, {"LR", &rec.LR}, {"RR", &rec.RR}} {
		add(tyre.name, fmt.Sprintf("%.1f %.1f %.1f / %.1f kPa",
			tyre.t.TempL, tyre.t.TempM, tyre.t.TempR, tyre.t.Pressure))
	}
	t.Render()
}

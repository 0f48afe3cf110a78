package session

import (
	"github.com/samber/lo"
)

// RosterEntry holds the static attributes of a car for the session
type RosterEntry struct {
	CarIdx        int    `json:"carIdx"` // position in the driver list
	UserName      string `json:"userName"`
	TeamName      string `json:"teamName"`
	CarNumber     string `json:"carNumber"`
	CarID         int    `json:"carId"`
	CarName       string `json:"carName"`
	CarClassID    int    `json:"carClassId"`
	CarClassColor int    `json:"carClassColor"`
	IRating       int    `json:"iRating"`
	LicLevel      int    `json:"licLevel"`
	LicString     string `json:"licString"`
	LicColor      int    `json:"licColor"`
	IsSpectator   bool   `json:"isSpectator"`
	ClubName      string `json:"clubName"`
	DivisionName  string `json:"divisionName"`
	IsPaceCar     bool   `json:"isPaceCar"`
	IsAI          bool   `json:"isAi"`
}

// CameraEntry is a selectable camera group
type CameraEntry struct {
	GroupNum  int
	GroupName string
}

// Roster returns one entry per driver list element. The list index is the
// car index used by the CarIdx* telemetry arrays.
func (d *Document) Roster() []RosterEntry {
	return lo.Map(d.DriverInfo.Drivers, func(item Driver, idx int) RosterEntry {
		return RosterEntry{
			CarIdx:        idx,
			UserName:      item.UserName,
			TeamName:      item.TeamName,
			CarNumber:     item.CarNumber,
			CarID:         item.CarID,
			CarName:       item.CarScreenName,
			CarClassID:    item.CarClassID,
			CarClassColor: item.CarClassColor,
			IRating:       item.IRating,
			LicLevel:      item.LicLevel,
			LicString:     item.LicString,
			LicColor:      item.LicColor,
			IsSpectator:   item.IsSpectator != 0,
			ClubName:      item.ClubName,
			DivisionName:  item.DivisionName,
			IsPaceCar:     item.CarIsPaceCar != 0,
			IsAI:          item.CarIsAI != 0,
		}
	})
}

func (d *Document) Cameras() []CameraEntry {
	return lo.Map(d.CameraInfo.Groups, func(item CameraGroup, _ int) CameraEntry {
		return CameraEntry{GroupNum: item.GroupNum, GroupName: item.GroupName}
	})
}

// Competitors filters out spectators and the pace car
func Competitors(roster []RosterEntry) []RosterEntry {
	return lo.Filter(roster, func(item RosterEntry, _ int) bool {
		return !item.IsSpectator && !item.IsPaceCar
	})
}

// Package session decodes the session document embedded in the shared
// memory region and derives the roster from it.
package session

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// Document is the subset of the session document used by this module.
// Unknown keys are ignored.
type Document struct {
	WeekendInfo WeekendInfo `yaml:"WeekendInfo"`
	SessionInfo SessionInfo `yaml:"SessionInfo"`
	CameraInfo  CameraInfo  `yaml:"CameraInfo"`
	DriverInfo  DriverInfo  `yaml:"DriverInfo"`
}

type WeekendInfo struct {
	TrackName        string `yaml:"TrackName"`
	TrackID          int    `yaml:"TrackID"`
	TrackLength      string `yaml:"TrackLength"`
	TrackDisplayName string `yaml:"TrackDisplayName"`
	TrackConfigName  string `yaml:"TrackConfigName"`
	TrackCity        string `yaml:"TrackCity"`
	TrackCountry     string `yaml:"TrackCountry"`
	SeriesID         int    `yaml:"SeriesID"`
	SeasonID         int    `yaml:"SeasonID"`
	SessionID        int    `yaml:"SessionID"`
	SubSessionID     int    `yaml:"SubSessionID"`
	EventType        string `yaml:"EventType"`
	Category         string `yaml:"Category"`
	NumCarClasses    int    `yaml:"NumCarClasses"`
	NumCarTypes      int    `yaml:"NumCarTypes"`
}

type SessionInfo struct {
	Sessions []Session `yaml:"Sessions"`
}

type Session struct {
	SessionNum  int    `yaml:"SessionNum"`
	SessionLaps string `yaml:"SessionLaps"`
	SessionTime string `yaml:"SessionTime"`
	SessionType string `yaml:"SessionType"`
	SessionName string `yaml:"SessionName"`
}

type CameraInfo struct {
	Groups []CameraGroup `yaml:"Groups"`
}

type CameraGroup struct {
	GroupNum  int      `yaml:"GroupNum"`
	GroupName string   `yaml:"GroupName"`
	Cameras   []Camera `yaml:"Cameras"`
}

type Camera struct {
	CameraNum  int    `yaml:"CameraNum"`
	CameraName string `yaml:"CameraName"`
}

type DriverInfo struct {
	DriverCarIdx int      `yaml:"DriverCarIdx"`
	Drivers      []Driver `yaml:"Drivers"`
}

type Driver struct {
	CarIdx        int    `yaml:"CarIdx"`
	UserName      string `yaml:"UserName"`
	TeamName      string `yaml:"TeamName"`
	CarNumber     string `yaml:"CarNumber"`
	CarID         int    `yaml:"CarID"`
	CarScreenName string `yaml:"CarScreenName"`
	CarClassID    int    `yaml:"CarClassID"`
	CarClassColor int    `yaml:"CarClassColor"`
	IRating       int    `yaml:"IRating"`
	LicLevel      int    `yaml:"LicLevel"`
	LicString     string `yaml:"LicString"`
	LicColor      int    `yaml:"LicColor"`
	IsSpectator   int    `yaml:"IsSpectator"`
	ClubName      string `yaml:"ClubName"`
	DivisionName  string `yaml:"DivisionName"`
	CarIsPaceCar  int    `yaml:"CarIsPaceCar"`
	CarIsAI       int    `yaml:"CarIsAI"`
}

// Parse decodes raw (ISO-8859-1 encoded YAML). An empty raw yields an
// empty document.
func Parse(raw []byte) (*Document, error) {
	doc := &Document{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	utf8, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session document: %w", err)
	}
	if err := yaml.Unmarshal(utf8, doc); err != nil {
		return nil, fmt.Errorf("parse session document: %w", err)
	}
	return doc, nil
}

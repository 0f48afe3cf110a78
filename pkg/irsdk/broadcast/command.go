package broadcast

import (
	"fmt"
	"strings"
)

// Command is the id of a remote command understood by the simulator
type Command int32

//nolint:revive // names follow the simulator SDK
const (
	CamSwitchPos Command = iota // car position, group, camera
	CamSwitchNum                // car number, group, camera
	CamSetState                 // camera state bits
	ReplaySetPlaySpeed          // speed, slow motion flag
	ReplaySetPlayPosition       // position mode, frame number (high, low)
	ReplaySearch                // search mode
	ReplaySetState              // replay state
	ReloadTextures              // reload mode, car idx
	ChatComand                  // chat command mode, macro number
	PitCommand                  // pit command mode, parameter
	TelemCommand                // telemetry command mode
	FFBCommand                  // force feedback mode, value (float)
	ReplaySearchSessionTime     // session number, session time in ms (high, low)
	VideoCapture                // video capture mode
	Last                        // unused, marks the end of the valid range
)

var commandNames = map[Command]string{
	CamSwitchPos:            "CamSwitchPos",
	CamSwitchNum:            "CamSwitchNum",
	CamSetState:             "CamSetState",
	ReplaySetPlaySpeed:      "ReplaySetPlaySpeed",
	ReplaySetPlayPosition:   "ReplaySetPlayPosition",
	ReplaySearch:            "ReplaySearch",
	ReplaySetState:          "ReplaySetState",
	ReloadTextures:          "ReloadTextures",
	ChatComand:              "ChatComand",
	PitCommand:              "PitCommand",
	TelemCommand:            "TelemCommand",
	FFBCommand:              "FFBCommand",
	ReplaySearchSessionTime: "ReplaySearchSessionTime",
	VideoCapture:            "VideoCapture",
}

// Valid reports whether c is within the known command range
func (c Command) Valid() bool {
	return c >= 0 && c < Last
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int32(c))
}

// ParseCommand resolves a command by name (case insensitive)
func ParseCommand(name string) (Command, error) {
	for c, n := range commandNames {
		if strings.EqualFold(n, name) {
			return c, nil
		}
	}
	return Last, fmt.Errorf("unknown command %q", name)
}

// Commands returns all valid commands in id order
func Commands() []Command {
	ret := make([]Command, 0, int(Last))
	for c := CamSwitchPos; c < Last; c++ {
		ret = append(ret, c)
	}
	return ret
}

// TelemCommand modes
const (
	TelemStop    int = iota // turn telemetry recording off
	TelemStart              // turn telemetry recording on
	TelemRestart            // write current file to disk and start a new one
)

// PitCommand modes
const (
	PitClear     int = iota // clear all pit checkboxes
	PitWS                   // clean the windshield
	PitFuel                 // add fuel, optional amount in liters
	PitLF                   // change left front tyre, optional pressure in KPa
	PitRF                   // right front
	PitLR                   // left rear
	PitRR                   // right rear
	PitClearTires           // clear tyre pit checkboxes
	PitFR                   // request a fast repair
	PitClearWS              // uncheck clean the windshield
	PitClearFR              // uncheck request a fast repair
	PitClearFuel            // uncheck add fuel
)

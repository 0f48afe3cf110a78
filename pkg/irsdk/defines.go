package irsdk

import "fmt"

// names of the objects published by the simulator
const (
	MemMapFileName     = `Local\IRSDKMemMapFileName`
	DataValidEventName = `Local\IRSDKDataValidEvent`
	BroadcastMsgName   = "IRSDK_BROADCASTMSG"
)

const (
	MaxBufs   = 4
	MaxString = 32
	MaxDesc   = 64
	UnitLen   = 32
)

// StatusField is the bitmask found in the header status word
type StatusField int32

const (
	StatusConnected StatusField = 1
)

// VarType is the type tag stored in a variable descriptor
type VarType int32

const (
	VarTypeChar VarType = iota
	VarTypeBool
	VarTypeInt
	VarTypeBitField
	VarTypeFloat
	VarTypeDouble
)

// Size returns the number of bytes a single element of the type occupies.
// ok is false for unknown tags.
func (t VarType) Size() (size int, ok bool) {
	switch t {
	case VarTypeChar, VarTypeBool:
		return 1, true
	case VarTypeInt, VarTypeBitField, VarTypeFloat:
		return 4, true
	case VarTypeDouble:
		return 8, true
	}
	return 0, false
}

func (t VarType) Valid() bool {
	_, ok := t.Size()
	return ok
}

func (t VarType) String() string {
	switch t {
	case VarTypeChar:
		return "char"
	case VarTypeBool:
		return "bool"
	case VarTypeInt:
		return "int"
	case VarTypeBitField:
		return "bitfield"
	case VarTypeFloat:
		return "float"
	case VarTypeDouble:
		return "double"
	}
	return fmt.Sprintf("unknown(%d)", int32(t))
}

// TrkLoc is the track surface a car is located on (CarIdxTrackSurface)
type TrkLoc int32

const (
	TrkLocNotInWorld TrkLoc = iota - 1
	TrkLocOffTrack
	TrkLocInPitStall
	TrkLocApproachingPits
	TrkLocOnTrack
)

func (t TrkLoc) String() string {
	switch t {
	case TrkLocNotInWorld:
		return "NotInWorld"
	case TrkLocOffTrack:
		return "OffTrack"
	case TrkLocInPitStall:
		return "InPitStall"
	case TrkLocApproachingPits:
		return "ApproachingPits"
	case TrkLocOnTrack:
		return "OnTrack"
	}
	return fmt.Sprintf("TrkLoc(%d)", int32(t))
}

package irsdk

import (
	"encoding/binary"
	"math"
)

// Value is a decoded element. The concrete type corresponds to the source
// type tag of the descriptor.
type Value interface {
	Type() VarType
	isValue()
}

type (
	CharValue     uint8
	BoolValue     bool
	IntValue      int32
	BitFieldValue uint32
	FloatValue    float32
	DoubleValue   float64
)

func (CharValue) Type() VarType     { return VarTypeChar }
func (BoolValue) Type() VarType     { return VarTypeBool }
func (IntValue) Type() VarType      { return VarTypeInt }
func (BitFieldValue) Type() VarType { return VarTypeBitField }
func (FloatValue) Type() VarType    { return VarTypeFloat }
func (DoubleValue) Type() VarType   { return VarTypeDouble }

func (CharValue) isValue()     {}
func (BoolValue) isValue()     {}
func (IntValue) isValue()      {}
func (BitFieldValue) isValue() {}
func (FloatValue) isValue()    {}
func (DoubleValue) isValue()   {}

// decodeValue reads one element of type t from the start of b.
// b must hold at least t.Size() bytes.
func decodeValue(name string, t VarType, b []byte) (Value, error) {
	switch t {
	case VarTypeChar:
		return CharValue(b[0]), nil
	case VarTypeBool:
		return BoolValue(b[0] != 0), nil
	case VarTypeInt:
		return IntValue(int32(binary.LittleEndian.Uint32(b))), nil
	case VarTypeBitField:
		return BitFieldValue(binary.LittleEndian.Uint32(b)), nil
	case VarTypeFloat:
		return FloatValue(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case VarTypeDouble:
		return DoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	}
	return nil, &UnsupportedVarTypeError{Name: name, Tag: t}
}

// AsBool converts v to bool (non-zero is true). nil yields false.
func AsBool(v Value) bool {
	switch x := v.(type) {
	case CharValue:
		return x != 0
	case BoolValue:
		return bool(x)
	case IntValue:
		return x != 0
	case BitFieldValue:
		return x != 0
	case FloatValue:
		return x != 0
	case DoubleValue:
		return x != 0
	}
	return false
}

// AsInt converts v to int. Floating point values are truncated toward zero,
// NaN yields 0 and values outside the int32 range saturate.
func AsInt(v Value) int {
	switch x := v.(type) {
	case CharValue:
		return int(x)
	case BoolValue:
		if x {
			return 1
		}
		return 0
	case IntValue:
		return int(x)
	case BitFieldValue:
		return int(int32(x))
	case FloatValue:
		return truncate(float64(x))
	case DoubleValue:
		return truncate(float64(x))
	}
	return 0
}

// AsFloat converts v to float32. nil yields 0.
func AsFloat(v Value) float32 {
	switch x := v.(type) {
	case FloatValue:
		return float32(x)
	case DoubleValue:
		return float32(x)
	case nil:
		return 0
	}
	return float32(AsInt(v))
}

// AsDouble converts v to float64. nil yields 0.
func AsDouble(v Value) float64 {
	switch x := v.(type) {
	case FloatValue:
		return float64(x)
	case DoubleValue:
		return float64(x)
	case nil:
		return 0
	}
	return float64(AsInt(v))
}

func truncate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

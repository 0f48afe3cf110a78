package log

import (
	"time"

	"go.uber.org/zap"
)

var (
	Any      = zap.Any
	Bool     = zap.Bool
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Int32    = zap.Int32
	Int64    = zap.Int64
	Uint32   = zap.Uint32
	Uint64   = zap.Uint64
	Float32  = zap.Float32
	Float64  = zap.Float64
	Duration = zap.Duration
	Stringer = zap.Stringer
)

func ErrorField(err error) Field {
	return zap.Error(err)
}

func Time(key string, t time.Time) Field {
	return zap.Time(key, t)
}

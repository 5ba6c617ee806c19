package mmlcd

import (
	"strconv"

	"go.uber.org/zap"
)

// logger ...
func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// hexID ...
func hexID(id int) string { return "0x" + strconv.FormatInt(int64(id), 16) }

// Pad ...
func Pad(in string, l int) string {
	for len(in) < l {
		in = in + " "
	}
	return in
}

package mmlcd

import (
	"context"
	"strconv"
)

// Code is the local call determination class of one NPA-NXX.
type Code uint8

// classification codes
const (
	CodeLocal           Code = 0 // local rate
	CodeReserved        Code = 1 // LMS, future use
	CodeToll            Code = 2 // intra-lata / long distance toll
	CodeInvalid         Code = 3 // unassigned, N11, the NPA itself
	CodeInterRegionToll Code = 4 // inter-lata toll, uncompressed tier only
)

// String ...
func (c Code) String() string {
	switch c {
	case CodeLocal:
		return "local"
	case CodeReserved:
		return "reserved"
	case CodeToll:
		return "toll"
	case CodeInvalid:
		return "invalid"
	case CodeInterRegionToll:
		return "inter-region-toll"
	}
	return "code(" + strconv.Itoa(int(c)) + ")"
}

// Key identifies one exchange: area code and central office code.
type Key struct {
	NPA int
	NXX int
}

// String renders the key as NPA-NXX.
func (k Key) String() string { return strconv.Itoa(k.NPA) + "-" + strconv.Itoa(k.NXX) }

// ClassificationMap is the read-only source of codes the encoder consumes.
// A missing entry is legal and encodes as CodeInvalid.
type ClassificationMap interface {
	Lookup(npa, nxx int) (Code, bool)
}

// Map is the default in-memory ClassificationMap. Build it first, then hand
// it to the generator; it must not be mutated while tables are generated.
type Map map[Key]Code

var _ ClassificationMap = Map(nil)

// Lookup ...
func (m Map) Lookup(npa, nxx int) (Code, bool) {
	c, ok := m[Key{npa, nxx}]
	return c, ok
}

// Set ...
func (m Map) Set(npa, nxx int, c Code) { m[Key{npa, nxx}] = c }

// Len ...
func (m Map) Len() int { return len(m) }

// Sink persists one generated table under its table number.
type Sink interface {
	Persist(ctx context.Context, id int, data []byte) error
}

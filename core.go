package mmlcd

import (
	"strconv"
	"strings"
)

// const layout
const (
	NXXFirst   = 200                    // first encoded central office code
	NXXLast    = 999                    // last encoded central office code
	NXXCount   = NXXLast - NXXFirst + 1 // entries per table
	HeaderSize = 2                      // packed npa digits + trailer nibble

	_trailer = 0x0e
)

// Tier describes one firmware generation's LCD table format and the table
// numbers reserved for it.
type Tier struct {
	Name     string // short name, used on the command line
	Firmware string // firmware generation reading this format
	First    int    // first table number
	Last     int    // last table number
	GapFirst int    // first reserved table number inside [First, Last], 0 = none
	GapLast  int    // last reserved table number inside [First, Last]
	Capacity int    // tables available, equals len(IDs())
	PerByte  int    // entries packed per body byte: 1, 2 or 4
	Padding  int    // zero bytes between header and body
}

// The three firmware generations, in generation order.
var (
	DoubleCompressed = Tier{
		Name:     "double-compressed",
		Firmware: "MTR 1.20/2.x",
		First:    136,
		Last:     155,
		GapFirst: 150,
		GapLast:  153,
		Capacity: 16,
		PerByte:  4,
	}
	Compressed = Tier{
		Name:     "compressed",
		Firmware: "MTR 1.9",
		First:    101,
		Last:     115,
		Capacity: 15,
		PerByte:  2,
	}
	Uncompressed = Tier{
		Name:     "uncompressed",
		Firmware: "MTR 1.7",
		First:    74,
		Last:     91,
		GapFirst: 82,
		GapLast:  89,
		Capacity: 10,
		PerByte:  1,
		Padding:  16,
	}
)

// Tiers returns all tiers in the order tables are generated.
func Tiers() []Tier { return []Tier{DoubleCompressed, Compressed, Uncompressed} }

// TierByName ...
func TierByName(name string) (Tier, bool) {
	for _, t := range Tiers() {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Tier{}, false
}

// String ...
func (t Tier) String() string { return t.Name + " (" + t.Firmware + ")" }

// BitsPerEntry ...
func (t Tier) BitsPerEntry() int { return 8 / t.PerByte }

// Size is the exact byte length of every table of this tier.
func (t Tier) Size() int { return HeaderSize + t.Padding + NXXCount/t.PerByte }

// Contains reports whether id is a table number this tier may emit.
func (t Tier) Contains(id int) bool {
	if id < t.First || id > t.Last {
		return false
	}
	return !t.inGap(id)
}

func (t Tier) inGap(id int) bool {
	return t.GapFirst != 0 && id >= t.GapFirst && id <= t.GapLast
}

// Next returns the table number following id, jumping the reserved gap.
// The result may be past Last; callers treat that as exhausted.
func (t Tier) Next(id int) int {
	id++
	if t.inGap(id) {
		id = t.GapLast + 1
	}
	return id
}

// IDs lists every table number of the tier in allocation order.
func (t Tier) IDs() []int {
	ids := make([]int, 0, t.Capacity)
	for id := t.First; id <= t.Last; id = t.Next(id) {
		ids = append(ids, id)
	}
	return ids
}

// TableFileName is the file name firmware tooling expects for table id,
// e.g. mm_table_88.bin for table 136.
func TableFileName(prefix string, id int) string {
	h := strconv.FormatInt(int64(id), 16)
	if len(h) < 2 {
		h = "0" + h
	}
	return prefix + "_" + h + ".bin"
}

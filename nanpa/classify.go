package nanpa

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"mmlcd"
)

// Query selects the terminal's local calling area.
type Query struct {
	Country     string   // CountryUS or CountryCA
	State       string   // US only, pattern matched at the start of the State column
	RateCenters []string // rate center names local to the terminal, matched as patterns for the NPA list
	OwnNPA      int      // the terminal's NPA, moved to the front of the NPA list
}

// RateCenters compiles names into one anchored alternation.
func RateCenters(names []string) (*regexp.Regexp, error) {
	if len(names) == 0 {
		return nil, errors.New("nanpa: no rate centers given")
	}
	re, err := regexp.Compile("^(?:" + strings.Join(names, "|") + ")$")
	if err != nil {
		return nil, fmt.Errorf("nanpa: invalid rate center list: %w", err)
	}
	return re, nil
}

// Classify builds the classification map and the NPA working list from
// source records. Assigned codes whose rate center is one of the listed
// names are local, other assigned codes are toll, unassigned codes are
// invalid. The NPA list holds every NPA with a code in a rate center
// matching the names as patterns, in file order, with the terminal's own
// NPA first.
func Classify(records []Record, q Query) (mmlcd.Map, []int, error) {
	rc, err := RateCenters(q.RateCenters)
	if err != nil {
		return nil, nil, err
	}
	var state *regexp.Regexp
	if q.Country == CountryUS && q.State != "" {
		if state, err = regexp.Compile("^(?:" + q.State + ")"); err != nil {
			return nil, nil, fmt.Errorf("nanpa: invalid state: %w", err)
		}
	}

	local := make(map[string]bool, len(q.RateCenters))
	for _, name := range q.RateCenters {
		local[name] = true
	}

	m := make(mmlcd.Map, len(records))
	var candidates []int
	for _, r := range records {
		switch {
		case !r.Assigned():
			m.Set(r.NPA, r.NXX, mmlcd.CodeInvalid)
		case local[r.RateCenter]:
			m.Set(r.NPA, r.NXX, mmlcd.CodeLocal)
		default:
			m.Set(r.NPA, r.NXX, mmlcd.CodeToll)
		}
		if rc.MatchString(r.RateCenter) && (state == nil || state.MatchString(r.State)) {
			candidates = append(candidates, r.NPA)
		}
	}
	return m, mmlcd.WorkingList(candidates, q.OwnNPA), nil
}

// Augment fills in the codes of the listed NPAs that a calling area lookup
// left open: assigned codes not yet classified become toll, unassigned
// codes become invalid.
func Augment(m mmlcd.Map, records []Record, npas []int) {
	want := make(map[int]bool, len(npas))
	for _, n := range npas {
		want[n] = true
	}
	for _, r := range records {
		if !want[r.NPA] {
			continue
		}
		if !r.Assigned() {
			m.Set(r.NPA, r.NXX, mmlcd.CodeInvalid)
			continue
		}
		if _, ok := m.Lookup(r.NPA, r.NXX); !ok {
			m.Set(r.NPA, r.NXX, mmlcd.CodeToll)
		}
	}
}

// Country returns the numbering administration region (US, CA, ...) of a
// terminal's NPA-NXX.
func Country(npa, nxx int) (string, error) {
	num, err := phonenumbers.Parse(fmt.Sprintf("+1%03d%03d0100", npa, nxx), "")
	if err != nil {
		return "", fmt.Errorf("nanpa: %03d-%03d: %w", npa, nxx, err)
	}
	region := phonenumbers.GetRegionCodeForNumber(num)
	if region == "" || region == "ZZ" {
		return "", fmt.Errorf("nanpa: %03d-%03d is not a geographic NANP exchange", npa, nxx)
	}
	return region, nil
}

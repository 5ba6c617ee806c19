package nanpa

import (
	"encoding/csv"
	"errors"
	"io"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// country codes of the two numbering administrations
const (
	CountryUS = "US"
	CountryCA = "CA"
)

// fill values for empty cells
const (
	_fillCode  = "0"
	_fillState = "Unknown"
	_fillUse   = "Unknown"
	_fillRC    = "None"
)

// Record is one central office code assignment.
type Record struct {
	State      string
	NPA        int
	NXX        int
	Use        string
	RateCenter string
}

// Assigned reports whether the code is in service.
func (r Record) Assigned() bool { return r.Use == "AS" || r.Use == "In Service" }

// feed
type feed struct {
	seq    int
	fields []string
}

// parsed
type parsed struct {
	seq int
	rec Record
}

// layout maps the columns we need to their position in a source file.
type layout struct {
	country string
	npanxx  int // US: combined NPA-NXX column
	npa     int
	nxx     int
	state   int
	use     int
	rc      int
}

var _canadaRename = map[string]string{
	"CO Code (NXX)": "NXX",
	"Status":        "Use",
	"Exchange Area": "RateCenter",
}

func newLayout(country string, header []string) (layout, error) {
	idx := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if country == CountryCA {
			if r, ok := _canadaRename[h]; ok {
				h = r
			}
		}
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	l := layout{country: country, npanxx: -1, npa: -1, nxx: -1, state: -1}
	var need []string
	switch country {
	case CountryUS:
		need = []string{"NPA-NXX", "State"}
	case CountryCA:
		need = []string{"NPA", "NXX"}
	default:
		return l, errors.New("nanpa: unknown country [" + country + "]")
	}
	need = append(need, "Use", "RateCenter")
	for _, n := range need {
		if _, ok := idx[n]; !ok {
			return l, errors.New("nanpa: source file lacks column [" + n + "]")
		}
	}
	l.use, l.rc = idx["Use"], idx["RateCenter"]
	if country == CountryUS {
		l.npanxx, l.state = idx["NPA-NXX"], idx["State"]
	} else {
		l.npa, l.nxx = idx["NPA"], idx["NXX"]
	}
	return l, nil
}

func cell(fields []string, i int, fill string) string {
	if i < 0 || i >= len(fields) {
		return fill
	}
	if v := strings.TrimSpace(fields[i]); v != "" {
		return v
	}
	return fill
}

func code(s string) (int, bool) {
	if len(s) != 3 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 200 {
		return 0, false
	}
	return n, true
}

// record converts one row; rows without a usable NPA-NXX are skipped.
func (l layout) record(fields []string) (Record, bool) {
	var npa, nxx string
	if l.country == CountryUS {
		npa, nxx, _ = strings.Cut(cell(fields, l.npanxx, _fillCode), "-")
	} else {
		npa, nxx = cell(fields, l.npa, _fillCode), cell(fields, l.nxx, _fillCode)
	}
	r := Record{
		State:      cell(fields, l.state, _fillState),
		Use:        cell(fields, l.use, _fillUse),
		RateCenter: cell(fields, l.rc, _fillRC),
	}
	var ok bool
	if r.NPA, ok = code(npa); !ok {
		return r, false
	}
	if r.NXX, ok = code(nxx); !ok {
		return r, false
	}
	return r, true
}

// Parse reads a numbering plan source: the US utilized-codes report (tab
// separated, or comma separated when csv is set) or the Canadian CO code
// status file (always comma separated). Rows are returned in file order.
func Parse(in io.Reader, country string, csvInput bool, log *zap.Logger) ([]Record, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if country == CountryUS && !csvInput {
		r.Comma = '\t'
	}
	header, err := r.Read()
	if err != nil {
		return nil, errors.New("nanpa: unable to read header [" + err.Error() + "]")
	}
	l, err := newLayout(country, header)
	if err != nil {
		return nil, err
	}
	return parseRows(r, l, runtime.NumCPU(), log)
}

func parseRows(r *csv.Reader, l layout, worker int, log *zap.Logger) ([]Record, error) {
	// channel setup
	feedChan := make(chan feed, 1000*worker)
	collectChan := make(chan parsed, 1000*worker)

	// worker
	go func() {
		bg := sync.WaitGroup{}
		bg.Add(worker)
		for i := 0; i < worker; i++ {
			go func() {
				defer bg.Done()
				for f := range feedChan {
					rec, ok := l.record(f.fields)
					if !ok {
						log.Debug("skip row", zap.Int("row", f.seq+2), zap.Strings("fields", f.fields))
						continue
					}
					collectChan <- parsed{seq: f.seq, rec: rec}
				}
			}()
		}
		bg.Wait()
		close(collectChan)
	}()

	// feeder
	var feedErr error
	go func() {
		defer close(feedChan)
		for seq := 0; ; seq++ {
			fields, err := r.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				feedErr = errors.New("nanpa: unable to parse source [" + err.Error() + "]")
				return
			}
			feedChan <- feed{seq: seq, fields: fields}
		}
	}()

	// collect
	var rows []parsed
	for p := range collectChan {
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	records := make([]Record, len(rows))
	for i, p := range rows {
		records[i] = p.rec
	}
	log.Debug("source parsed", zap.Int("records", len(records)))
	return records, feedErr
}

// ReadRecords opens a source file (plain or compressed) and parses it.
func ReadRecords(name, country string, log *zap.Logger) ([]Record, error) {
	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	csvInput := strings.Contains(name, ".csv") || strings.Contains(EntryName(name), ".csv")
	return Parse(f, country, csvInput, log)
}

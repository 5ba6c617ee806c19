package lcg

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"mmlcd"
	"mmlcd/fetch"
)

// region kinds
const (
	KindLATA = "lata"
	KindLIR  = "lir"
)

// _canadaLATA is the single pseudo LATA covering all of Canada.
const _canadaLATA = "888"

// ErrCanadaLATA ...
var ErrCanadaLATA = errors.New("lcg: Canada is a single LATA (888), use the lir mode")

// Region is a LATA or a Local Interconnection Region.
type Region struct {
	Kind string // KindLATA or KindLIR
	ID   string
}

// String ...
func (r Region) String() string { return r.Kind + "-" + r.ID }

// Options ...
type Options struct {
	Kind       string      // KindLATA or KindLIR
	CacheDir   string      // where <kind>-<id>.csv region caches live
	MaxAgeDays int         // rebuild region cache when older
	Log        *zap.Logger // nil logs nothing
}

// Result ...
type Result struct {
	Exchange string
	Region   Region
	Map      mmlcd.Map
	NPAs     []int
}

// Build classifies every NPA-NXX reachable from the terminal's region: codes
// in the region are toll, codes in the terminal exchange's local calling
// area are local. NPAs come back in ascending order with the terminal's own
// NPA first.
func Build(ctx context.Context, c *Client, own mmlcd.Key, opt Options) (Result, error) {
	log := opt.Log
	if log == nil {
		log = zap.NewNop()
	}
	pd, err := c.Prefix(ctx, own.NPA, own.NXX)
	if err != nil {
		return Result{}, err
	}
	region := Region{Kind: opt.Kind}
	switch opt.Kind {
	case KindLATA:
		region.ID = pd.LATA
		if region.ID == _canadaLATA {
			return Result{}, ErrCanadaLATA
		}
	case KindLIR:
		region.ID = pd.LIR
	default:
		return Result{}, fmt.Errorf("lcg: unknown region kind %q", opt.Kind)
	}
	if region.ID == "" {
		return Result{}, fmt.Errorf("%w: %s for %s", ErrNotFound, opt.Kind, own)
	}
	log.Info("terminal exchange", zap.String("exch", pd.Exch), zap.Stringer("region", region))

	keys, err := regionPrefixes(ctx, c, region, opt, log)
	if err != nil {
		return Result{}, err
	}

	res := Result{Exchange: pd.Exch, Region: region, Map: make(mmlcd.Map, len(keys))}
	npas := map[int]bool{}
	for _, k := range keys {
		res.Map.Set(k.NPA, k.NXX, mmlcd.CodeToll)
		npas[k.NPA] = true
	}

	log.Info("adding local exchange prefixes", zap.String("exch", pd.Exch))
	local, err := c.LocalPrefixes(ctx, pd.Exch)
	if err != nil {
		return Result{}, err
	}
	for _, k := range local {
		res.Map.Set(k.NPA, k.NXX, mmlcd.CodeLocal)
		npas[k.NPA] = true
	}

	sorted := make([]int, 0, len(npas))
	for n := range npas {
		sorted = append(sorted, n)
	}
	sort.Ints(sorted)
	res.NPAs = mmlcd.WorkingList(sorted, own.NPA)
	return res, nil
}

// CacheFile ...
func CacheFile(dir string, r Region) string {
	return filepath.Join(dir, r.String()+".csv")
}

func regionPrefixes(ctx context.Context, c *Client, r Region, opt Options, log *zap.Logger) ([]mmlcd.Key, error) {
	name := CacheFile(opt.CacheDir, r)
	if !fetch.IsOlderThan(name, opt.MaxAgeDays) {
		log.Info("region cache is recent, skipping generation", zap.String("file", name), zap.Int("max_age_days", opt.MaxAgeDays))
		return ReadCache(name)
	}

	rcs, err := c.RateCenters(ctx, r)
	if err != nil {
		return nil, err
	}
	seen := map[mmlcd.Key]bool{}
	var keys []mmlcd.Key
	for _, rc := range rcs {
		if rc.Alias() {
			log.Debug("skipping alias exchange", zap.String("exch", rc.Exch))
			continue
		}
		log.Info("parsing exchange", zap.String("exch", rc.Exch), zap.String("rc", rc.Name))
		local, err := c.LocalPrefixes(ctx, rc.Exch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("unable to parse exchange", zap.String("exch", rc.Exch), zap.Error(err))
		}
		for _, k := range local {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].NPA != keys[j].NPA {
			return keys[i].NPA < keys[j].NPA
		}
		return keys[i].NXX < keys[j].NXX
	})
	if err := WriteCache(name, keys); err != nil {
		log.Warn("unable to write region cache", zap.String("file", name), zap.Error(err))
	}
	return keys, nil
}

// ReadCache reads an NPA,NXX region cache.
func ReadCache(name string) ([]mmlcd.Key, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("lcg: %s: %w", name, err)
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}
	keys := make([]mmlcd.Key, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("lcg: %s: row %d: want NPA,NXX", name, i+2)
		}
		npa, err1 := strconv.Atoi(row[0])
		nxx, err2 := strconv.Atoi(row[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("lcg: %s: row %d: bad prefix %q-%q", name, i+2, row[0], row[1])
		}
		keys = append(keys, mmlcd.Key{NPA: npa, NXX: nxx})
	}
	return keys, nil
}

// WriteCache stores region prefixes as NPA,NXX rows.
func WriteCache(name string, keys []mmlcd.Key) error {
	if dir := filepath.Dir(name); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"NPA", "NXX"})
	for _, k := range keys {
		_ = w.Write([]string{pad3(k.NPA), pad3(k.NXX)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

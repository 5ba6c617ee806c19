package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"mmlcd"
	"mmlcd/fetch"
	"mmlcd/nanpa"
	"mmlcd/tablefs"
)

// terminal flags shared by all modes
var (
	npaFlag int
	nxxFlag int
	ageFlag int
)

func terminalFlags(c *pflag.FlagSet) {
	c.IntVar(&npaFlag, "npa", 0, "terminal NPA (area code)")
	c.IntVar(&nxxFlag, "nxx", 0, "terminal NXX (central office code)")
	c.IntVar(&ageFlag, "age", 0, "rebuild cached data older than this many days")
}

// applyTerminal folds the terminal flags into the loaded config and
// validates the result.
func applyTerminal(flagChanged func(string) bool) error {
	if flagChanged("npa") {
		cfg.Terminal.NPA = npaFlag
	}
	if flagChanged("nxx") {
		cfg.Terminal.NXX = nxxFlag
	}
	if flagChanged("age") {
		cfg.Data.MaxAgeDays = ageFlag
	}
	return cfg.Validate()
}

// own ...
func own() mmlcd.Key {
	return mmlcd.Key{NPA: cfg.Terminal.NPA, NXX: cfg.Terminal.NXX}
}

// selectedTiers resolves tier names, nil selects all.
func selectedTiers(names []string) ([]mmlcd.Tier, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var out []mmlcd.Tier
	for _, n := range names {
		t, ok := mmlcd.TierByName(n)
		if !ok {
			return nil, fmt.Errorf("unknown tier %q", n)
		}
		out = append(out, t)
	}
	return out, nil
}

// transport ...
func transport() fetch.Transport {
	return fetch.Transport{Proxy: cfg.Data.Proxy, KeyPins: cfg.Data.TLSKeyPins}
}

// loadRecords returns the parsed numbering plan for country, from an
// explicit data file or a fetched source.
func loadRecords(ctx context.Context, country, file string) ([]nanpa.Record, error) {
	if file == "" {
		srcs := fetch.Sources(cfg.Data.Store, country, transport())
		if len(srcs) == 0 {
			return nil, fmt.Errorf("no numbering plan source for country %q", country)
		}
		var err error
		file, err = fetch.Get(ctx, srcs[0], fetch.Options{
			Fetch:      cfg.Data.Fetch,
			MaxAgeDays: cfg.Data.MaxAgeDays,
			Log:        logger,
		})
		if err != nil {
			return nil, err
		}
	}
	logger.Info("reading numbering plan", zap.String("file", file), zap.String("country", country))
	return nanpa.ReadRecords(file, country, logger)
}

// generate writes all tables for m and prints the per-tier summary.
func generate(ctx context.Context, m mmlcd.ClassificationMap, npas []int) error {
	ts, err := selectedTiers(cfg.Output.Tiers)
	if err != nil {
		return err
	}
	out("Working NPA list: " + joinInts(npas))

	sink := tablefs.New(cfg.Output.Dir, cfg.Output.Prefix)
	g := mmlcd.NewGenerator(sink,
		mmlcd.WithLogger(logger),
		mmlcd.WithWorkers(cfg.Output.Workers),
		mmlcd.WithTiers(ts...),
	)
	rep, err := g.GenerateAll(ctx, m, npas)
	if err != nil {
		return err
	}
	for _, tr := range rep.Tiers {
		line := mmlcd.Pad(tr.Tier.String(), 40) + strconv.Itoa(len(tr.Tables)) + " tables"
		if tr.Overflow() {
			line += ", dropped NPA " + joinInts(tr.Dropped)
		}
		out(line)
	}
	if rep.Status == mmlcd.PartialFailure {
		return errPartial
	}
	out("Successfully completed generating LCD tables.")
	return nil
}

// joinInts ...
func joinInts(in []int) string {
	s := make([]string, len(in))
	for i, n := range in {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ", ")
}

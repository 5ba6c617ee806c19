package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mmlcd/lcg"
	"mmlcd/nanpa"
)

var lataCmd = &cobra.Command{
	Use:   "lata",
	Short: "build tables for the terminal's LATA from the local calling guide",
	Long: `Every prefix in the terminal's LATA is toll, prefixes in the terminal
exchange's local calling area are local. US terminals only, Canada is a
single LATA; use lir there.`,
	Example: `  mmlcd lata --npa 408 --nxx 535`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRegion(cmd, lcg.KindLATA)
	},
}

var lirCmd = &cobra.Command{
	Use:   "lir",
	Short: "build tables for the terminal's Local Interconnection Region",
	Long: `Like lata, scoped to the Local Interconnection Region. The CNAC code
status report then marks unassigned codes of the region's NPAs invalid and
assigned codes not yet seen as toll.`,
	Example: `  mmlcd lir --npa 613 --nxx 562`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRegion(cmd, lcg.KindLIR)
	},
}

func init() {
	terminalFlags(lataCmd.Flags())
	f := lirCmd.Flags()
	terminalFlags(f)
	f.StringVar(&dataFileFlag, "datafile", "", "local CNAC code status file, skips the download")
	f.BoolVar(&fetchFlag, "fetch", true, "download missing or stale source files")
}

// runRegion ...
func runRegion(cmd *cobra.Command, kind string) error {
	flags := cmd.Flags()
	if err := applyTerminal(flags.Changed); err != nil {
		return err
	}
	if flags.Changed("fetch") {
		cfg.Data.Fetch = fetchFlag
	}
	if flags.Changed("datafile") {
		cfg.Data.File = dataFileFlag
	}

	ctx := cmd.Context()
	c := lcg.NewClient(cfg.Data.LCGURL, transport())
	res, err := lcg.Build(ctx, c, own(), lcg.Options{
		Kind:       kind,
		CacheDir:   cfg.Data.Store,
		MaxAgeDays: cfg.Data.MaxAgeDays,
		Log:        logger,
	})
	if err != nil {
		return err
	}
	logger.Info("region built", zap.Stringer("region", res.Region), zap.Int("codes", res.Map.Len()))

	if kind == lcg.KindLIR {
		records, err := loadRecords(ctx, nanpa.CountryCA, cfg.Data.File)
		if err != nil {
			return err
		}
		nanpa.Augment(res.Map, records, res.NPAs)
		logger.Info("augmented with code status", zap.Int("codes", res.Map.Len()))
	}
	return generate(ctx, res.Map, res.NPAs)
}

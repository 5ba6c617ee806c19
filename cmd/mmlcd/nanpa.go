package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mmlcd/nanpa"
)

var (
	countryFlag     string
	stateFlag       string
	dataFileFlag    string
	rateCentersFlag []string
	fetchFlag       bool
)

var nanpaCmd = &cobra.Command{
	Use:   "nanpa",
	Short: "build tables from the NANPA (US) or CNAC (Canada) utilized codes report",
	Long: `Classifies every NPA-NXX of the terminal's country from the numbering
administrator's code assignment report. Codes in one of the given rate centers
are local, other assigned codes are toll, unassigned codes are invalid.

The report is downloaded into the data store when missing or stale, unless
--datafile names a local copy (.zip, .txt, .csv, optionally .gz or .zst).`,
	Example: `  mmlcd nanpa --npa 408 --nxx 535 --state CA --ratecenters "SNJS NORTH" --ratecenters CAMPBELL
  mmlcd nanpa --npa 613 --nxx 562 --ratecenters Ottawa-Hull --datafile COCodeStatus_ALL.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("country") {
			cfg.Terminal.Country = countryFlag
		}
		if flags.Changed("state") {
			cfg.Terminal.State = stateFlag
		}
		if flags.Changed("ratecenters") {
			cfg.RateCenters = rateCentersFlag
		}
		if flags.Changed("fetch") {
			cfg.Data.Fetch = fetchFlag
		}
		if flags.Changed("datafile") {
			cfg.Data.File = dataFileFlag
		}
		if err := applyTerminal(flags.Changed); err != nil {
			return err
		}

		country := cfg.Terminal.Country
		if country == "" {
			var err error
			if country, err = nanpa.Country(cfg.Terminal.NPA, cfg.Terminal.NXX); err != nil {
				return err
			}
			logger.Info("derived terminal country", zap.String("country", country))
		}

		ctx := cmd.Context()
		records, err := loadRecords(ctx, country, cfg.Data.File)
		if err != nil {
			return err
		}
		m, npas, err := nanpa.Classify(records, nanpa.Query{
			Country:     country,
			State:       cfg.Terminal.State,
			RateCenters: cfg.RateCenters,
			OwnNPA:      cfg.Terminal.NPA,
		})
		if err != nil {
			return err
		}
		logger.Info("classified numbering plan", zap.Int("records", len(records)), zap.Int("codes", m.Len()), zap.Int("npas", len(npas)))
		return generate(ctx, m, npas)
	},
}

func init() {
	f := nanpaCmd.Flags()
	terminalFlags(f)
	f.StringVar(&countryFlag, "country", "", "US or CA (default derived from NPA-NXX)")
	f.StringVar(&stateFlag, "state", "", "US state filter for the NPA list")
	f.StringVar(&dataFileFlag, "datafile", "", "local numbering plan file, skips the download")
	f.StringArrayVar(&rateCentersFlag, "ratecenters", nil, "local rate center name (repeatable)")
	f.BoolVar(&fetchFlag, "fetch", true, "download missing or stale source files")
}

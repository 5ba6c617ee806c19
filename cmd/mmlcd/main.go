// package main ...
package main

// import ...
import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mmlcd/config"
)

// exit codes
const (
	_exitOK      = 0
	_exitError   = 1
	_exitPartial = 2
)

// errPartial marks a run where at least one tier ran out of table numbers.
var errPartial = errors.New("lcd table limit exceeded for one or more MTR versions")

var (
	// global flags
	configPath string
	verbose    bool
	outDir     string
	prefix     string
	workers    int
	tiers      []string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mmlcd",
	Short: "LCD table generator for the Nortel Millennium payphone",
	Long: `mmlcd builds Local Call Determination tables for the Nortel Millennium
payphone from numbering plan data, in the three formats read by MTR 1.7
(uncompressed), MTR 1.9 (compressed) and MTR 1.20/2.x (double-compressed).

Tables are written as <prefix>_<hex table number>.bin.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("out") {
			cfg.Output.Dir = outDir
		}
		if flags.Changed("prefix") {
			cfg.Output.Prefix = prefix
		}
		if flags.Changed("workers") {
			cfg.Output.Workers = workers
		}
		if flags.Changed("tiers") {
			cfg.Output.Tiers = tiers
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = newLogger(cfg.Log.Level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug output")
	pf.StringVarP(&outDir, "out", "o", ".", "output directory for table files")
	pf.StringVar(&prefix, "prefix", "mm_table", "table file name prefix")
	pf.IntVar(&workers, "workers", 0, "parallel table writers (0 = NumCPU)")
	pf.StringSliceVar(&tiers, "tiers", nil, "limit to tiers: double-compressed, compressed, uncompressed")

	rootCmd.AddCommand(nanpaCmd, lataCmd, lirCmd, configCmd)
}

// newLogger ...
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// main ..
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out("LCD Table Generator for the Nortel Millennium Payphone")
	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		os.Exit(_exitOK)
	case errors.Is(err, errPartial):
		out(err.Error() + ".")
		os.Exit(_exitPartial)
	default:
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(_exitError)
	}
}

//
// LITTLE GENERIC HELPER SECTION
//

// out ...
func out(msg string) {
	os.Stdout.Write([]byte(msg + "\n"))
}

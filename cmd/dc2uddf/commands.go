package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chrissnell/dc2uddf/internal/app"
	"github.com/chrissnell/dc2uddf/internal/constants"
	"github.com/chrissnell/dc2uddf/internal/log"
	"github.com/chrissnell/dc2uddf/pkg/config"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	debug      bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:          "dc2uddf",
		Short:        "Convert dive computer logs to UDDF",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "Path to a YAML or TOML configuration file (optional)")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Turn on debugging output")

	cmd.AddCommand(convertCmd(&g), exportCmd(&g), versionCmd())
	return cmd
}

func convertCmd(g *globalFlags) *cobra.Command {
	var (
		source             string
		recording          string
		dives              int
		seed               int64
		record             string
		output             string
		includeNonSchema   bool
		noTruncate         bool
		noPressureFix      bool
		maxSurfaceInterval time.Duration
		logbookDriver      string
		logbookDSN         string
	)

	c := &cobra.Command{
		Use:   "convert",
		Short: "Download dives and write them as a UDDF document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, func(cfg *config.ConfigData, flags *pflag.FlagSet) {
				if flags.Changed("source") {
					cfg.Source.Type = source
				}
				if flags.Changed("recording") {
					cfg.Source.Path = recording
					if !flags.Changed("source") {
						cfg.Source.Type = config.SourceReplay
					}
				}
				if flags.Changed("dives") {
					cfg.Source.Dives = dives
				}
				if flags.Changed("seed") {
					cfg.Source.Seed = seed
				}
				if flags.Changed("record") {
					cfg.Source.Record = record
				}
				if flags.Changed("output") {
					cfg.Output.Path = output
				}
				if flags.Changed("include-non-schema") {
					cfg.Output.IncludeNonSchema = includeNonSchema
				}
				if flags.Changed("no-truncate") {
					cfg.Corrections.Truncate = !noTruncate
				}
				if flags.Changed("no-pressure-fix") {
					cfg.Corrections.InitialPressureFix = !noPressureFix
				}
				if flags.Changed("max-surface-interval") {
					cfg.Corrections.MaxSurfaceInterval = maxSurfaceInterval
				}
				if flags.Changed("logbook-driver") {
					cfg.Logbook.Driver = logbookDriver
				}
				if flags.Changed("logbook-dsn") {
					cfg.Logbook.DSN = logbookDSN
				}
			}, (*app.App).Convert)
		},
	}

	c.Flags().StringVar(&source, "source", config.SourceSimulator, "Dive source: replay or simulator")
	c.Flags().StringVarP(&recording, "recording", "r", "", "Recording to replay (implies --source replay)")
	c.Flags().IntVar(&dives, "dives", 4, "Number of dives to simulate")
	c.Flags().Int64Var(&seed, "seed", 1, "Simulator seed")
	c.Flags().StringVar(&record, "record", "", "Save the download as a recording at this path")
	c.Flags().StringVarP(&output, "output", "o", config.StdoutPath, "UDDF output file, - for stdout")
	c.Flags().BoolVar(&includeNonSchema, "include-non-schema", false, "Include event and vendor elements that are not part of UDDF")
	c.Flags().BoolVar(&noTruncate, "no-truncate", false, "Keep samples recorded at the surface after the dive")
	c.Flags().BoolVar(&noPressureFix, "no-pressure-fix", false, "Keep the pressure readings reported before the transmitter synced")
	c.Flags().DurationVar(&maxSurfaceInterval, "max-surface-interval", config.DefaultMaxSurfaceInterval, "Longest gap between dives of one repetition")
	addLogbookFlags(c.Flags(), &logbookDriver, &logbookDSN)

	return c
}

func exportCmd(g *globalFlags) *cobra.Command {
	var (
		output           string
		includeNonSchema bool
		logbookDriver    string
		logbookDSN       string
	)

	c := &cobra.Command{
		Use:   "export",
		Short: "Write every dive in the logbook as a UDDF document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, func(cfg *config.ConfigData, flags *pflag.FlagSet) {
				if flags.Changed("output") {
					cfg.Output.Path = output
				}
				if flags.Changed("include-non-schema") {
					cfg.Output.IncludeNonSchema = includeNonSchema
				}
				if flags.Changed("logbook-driver") {
					cfg.Logbook.Driver = logbookDriver
				}
				if flags.Changed("logbook-dsn") {
					cfg.Logbook.DSN = logbookDSN
				}
			}, (*app.App).Export)
		},
	}

	c.Flags().StringVarP(&output, "output", "o", config.StdoutPath, "UDDF output file, - for stdout")
	c.Flags().BoolVar(&includeNonSchema, "include-non-schema", false, "Include event and vendor elements that are not part of UDDF")
	addLogbookFlags(c.Flags(), &logbookDriver, &logbookDSN)

	return c
}

func addLogbookFlags(flags *pflag.FlagSet, driver, dsn *string) {
	flags.StringVar(driver, "logbook-driver", "", "Logbook driver: sqlite or postgres")
	flags.StringVar(dsn, "logbook-dsn", "", "Logbook database file (sqlite) or connection string (postgres)")
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dc2uddf %s-%s\n", constants.Version, constants.Platform)
		},
	}
}

// run loads the configuration, applies the flags set on the command line
// and runs action
func run(cmd *cobra.Command, g *globalFlags, override func(*config.ConfigData, *pflag.FlagSet), action func(*app.App, context.Context) error) error {
	cfg, err := loadConfig(g.configFile)
	if err != nil {
		return err
	}
	override(cfg, cmd.Flags())
	if g.debug {
		cfg.Debug = true
	}

	if err := log.Init(cfg.Debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Errorf("invalid configuration: %v", err)
		return err
	}

	if err := action(app.New(cfg, log.GetSugaredLogger()), cmd.Context()); err != nil {
		log.Errorf("%v failed: %v", cmd.Name(), err)
		return err
	}
	return nil
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}

	filename, _ := filepath.Abs(cfgFile)
	provider, err := config.NewProvider(filename)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file %v: %w", filename, err)
	}
	return cfgData, nil
}

package cmd

import (
	"context"
	"fmt"

	"stocktrader/internal/app"
	"stocktrader/internal/domain"
	"stocktrader/internal/logger"
	"stocktrader/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	configPath     string
	dataDir        string
	outputDir      string
	initialCapital float64
	omitDates      bool
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "stocktrader",
		Short:         "simulate trading strategies over daily stock prices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to the json config, defaults to the env specific location")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory of <symbol>.<market>.txt price files")
	root.PersistentFlags().StringVar(&flags.outputDir, "out", "", "directory the transaction log and valuation are written to")
	root.PersistentFlags().Float64Var(&flags.initialCapital, "initial-capital", 0, "starting capital")
	root.PersistentFlags().BoolVar(&flags.omitDates, "omit-dates", false, "write transaction lines without the date column")

	root.AddCommand(
		newWindowedCmd(flags),
		newIntradayCmd(flags),
		newServeCmd(flags),
	)

	return root
}

// Execute runs the cli against os.Args
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig applies command line overrides on top of the config file
func (f rootFlags) loadConfig(cmd *cobra.Command) (*util.Config, error) {
	cfg, err := util.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = f.outputDir
	}
	if cmd.Flags().Changed("initial-capital") {
		cfg.InitialCapital = f.initialCapital
	}
	return cfg, nil
}

func (f rootFlags) setup(cmd *cobra.Command) (*Dependencies, error) {
	cfg, err := f.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return InitializeDependencies(cfg, !f.omitDates)
}

func runContext(cmd *cobra.Command) (context.Context, *domain.Profile, func()) {
	profile, endProfile := domain.NewProfile()
	ctx := logger.WithLogger(cmd.Context(), logger.New())
	ctx = context.WithValue(ctx, domain.ContextProfileKey, profile)
	return ctx, profile, endProfile
}

func logProfile(lg *zap.SugaredLogger, profile *domain.Profile) {
	bytes, err := profile.ToJsonBytes()
	if err != nil {
		lg.Warnw("failed to serialize run profile", "error", err)
		return
	}
	lg.Infow("run profile", "profile", string(bytes))
}

func newWindowedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "windowed",
		Short: "run the windowed strategy over the configured periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			periods, err := PeriodFilters(deps.Config.Periods)
			if err != nil {
				return err
			}

			ctx, profile, endProfile := runContext(cmd)
			lg := logger.FromContext(ctx)

			result, err := deps.SimulationApp.RunWindowed(ctx, app.RunWindowedInput{
				InitialCapital: deps.Config.InitialCapital,
				Periods:        periods,
			})
			if err != nil {
				return fmt.Errorf("windowed simulation failed: %w", err)
			}
			if err := deps.SimulationApp.Export(deps.Config.OutputDir, app.WindowedLogFile, result); err != nil {
				return err
			}
			endProfile()
			logProfile(lg, profile)

			for i, p := range result.Periods {
				fmt.Fprintf(cmd.OutOrStdout(), "period %d: %.4f -> %.4f (%d transactions)\n", i, p.InitialCapital, p.FinalCapital, p.Transactions)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "final capital: %.4f\n", result.FinalCapital)
			return nil
		},
	}
}

func newIntradayCmd(flags *rootFlags) *cobra.Command {
	var maxTransactions int

	cmd := &cobra.Command{
		Use:   "intraday",
		Short: "run the intra-day strategy over every price bar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-transactions") {
				cfg.Intraday.MaxTransactions = maxTransactions
			}
			deps, err := InitializeDependencies(cfg, !flags.omitDates)
			if err != nil {
				return err
			}

			ctx, profile, endProfile := runContext(cmd)
			lg := logger.FromContext(ctx)

			result, err := deps.SimulationApp.RunIntraday(ctx, app.RunIntradayInput{
				InitialCapital: cfg.InitialCapital,
			})
			if err != nil {
				return fmt.Errorf("intraday simulation failed: %w", err)
			}
			if err := deps.SimulationApp.Export(cfg.OutputDir, app.IntradayLogFile, result); err != nil {
				return err
			}
			endProfile()
			logProfile(lg, profile)

			fmt.Fprintf(cmd.OutOrStdout(), "final capital: %.4f (%d transactions)\n", result.FinalCapital, len(result.Transactions))
			return nil
		},
	}
	cmd.Flags().IntVar(&maxTransactions, "max-transactions", 0, "stop after this many transactions")

	return cmd
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the simulation api",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = deps.Config.ApiPort
			}
			return deps.ApiHandler.StartApi(port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 3009, "port to listen on")

	return cmd
}

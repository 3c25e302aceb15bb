package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PostingsCleaner/internal/app"
	"PostingsCleaner/internal/config"
	"PostingsCleaner/internal/logging"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "postingscleaner",
		Short: "Clean academic job-market exports into shortlist spreadsheets",
		Long: `postingscleaner reads job-posting exports from the AEA JOE listing and
EconJobMarket, flags rank, discipline and country, infers the earliest
deadline, discards unsuitable postings and writes four views per run:
the accepted shortlist, the discarded rows, the academic subset and a
verbose audit sheet.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (or set POSTINGS_CONFIG)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newSourceCmd("aea", "Clean an AEA JOE export", flags))
	root.AddCommand(newSourceCmd("ejm", "Clean an EconJobMarket export", flags))
	root.AddCommand(newManualCmd(flags))
	root.AddCommand(newJoinCmd(flags))
	return root
}

func newSourceCmd(name, short string, flags *globalFlags) *cobra.Command {
	var (
		getLinks bool
		tries    int
	)
	cmd := &cobra.Command{
		Use:   name + " <csvfile> <output> <discarded> <academic> <verbose>",
		Short: short,
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.application()
			if err != nil {
				return err
			}
			res, err := application.RunSource(cmd.Context(), app.SourceRun{
				Source:   name,
				Input:    args[0],
				Targets:  targetsFrom(args[1:]),
				GetLinks: getLinks,
				Tries:    tries,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d kept, %d discarded, %d enriched\n",
				name, len(res.Records), len(res.Records)-res.Discarded, res.Discarded, res.Enriched)
			return nil
		},
	}
	cmd.Flags().BoolVar(&getLinks, "getlinks", false, "Fetch listing pages for application links")
	cmd.Flags().IntVar(&tries, "tries", 1, "Attempts per listing page")
	return cmd
}

func newManualCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "manual <person> <csvfile> <output> <discarded> <academic> <verbose>",
		Short: "Pass a hand-curated sheet through to the four views",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.application()
			if err != nil {
				return err
			}
			return application.RunManual(cmd.Context(), args[0], args[1], targetsFrom(args[2:]))
		},
	}
}

func newJoinCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "join <output> <files...>",
		Short: "Concatenate output files that share a header",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.application()
			if err != nil {
				return err
			}
			return application.Join(cmd.Context(), args[0], args[1:]...)
		},
	}
}

func (f *globalFlags) application() (*app.Application, error) {
	cfg := config.Load(f.configPath)
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

func targetsFrom(dirs []string) app.Targets {
	return app.Targets{
		Output:    dirs[0],
		Discarded: dirs[1],
		Academic:  dirs[2],
		Verbose:   dirs[3],
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

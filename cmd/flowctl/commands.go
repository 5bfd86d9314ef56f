package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/talentflow/internal/adapters/repository/pgstore"
	"github.com/okian/talentflow/internal/config"
	"github.com/okian/talentflow/internal/seed"
	"github.com/okian/talentflow/pkg/logger"
)

const (
	defaultURL      = "http://localhost:9080"
	defaultTimeout  = 30 * time.Second
	defaultProfiles = 1000
)

var errNoDSN = errors.New("no postgres dsn: pass --dsn or set TALENTFLOW_POSTGRES__DSN")

type rootFlags struct {
	url       string
	timeout   time.Duration
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:          "flowctl",
		Short:        "Seed and query a talentflow service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(
				logger.WithWriter(cmd.ErrOrStderr()),
				logger.WithFormat(f.logFormat),
				logger.WithLevel(f.logLevel),
			)
		},
	}
	root.PersistentFlags().StringVar(&f.url, "url", envOr("TALENTFLOW_URL", defaultURL), "base URL of the talentflow API")
	root.PersistentFlags().DurationVar(&f.timeout, "timeout", defaultTimeout, "per-request timeout")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", logger.FormatConsole, "log format (text, json, console)")

	root.AddCommand(newSeedCmd(f), newRankCmd(f), newFlowCmd(f), newSignalCmd(f), newCareerCmd(f), newMigrateCmd())
	return root
}

func (f *rootFlags) client() *seed.Client {
	return seed.NewClient(f.url, seed.WithTimeout(f.timeout))
}

func newSeedCmd(f *rootFlags) *cobra.Command {
	var (
		cfg     seed.Config
		rngSeed uint64
		rank    bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate synthetic career histories and ingest them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []seed.GeneratorOption
			if cmd.Flags().Changed("seed") {
				opts = append(opts, seed.WithSeed(rngSeed))
			}
			c := f.client()
			stats, err := seed.Run(cmd.Context(), c, seed.NewGenerator(opts...), cfg)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), stats); err != nil {
				return err
			}
			if !rank || cfg.Async {
				return nil
			}
			info, err := c.RunRanking(cmd.Context(), "", "", "")
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().IntVarP(&cfg.Profiles, "profiles", "n", defaultProfiles, "number of profiles to generate")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch", 100, "profiles per request")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 4, "concurrent requests")
	cmd.Flags().BoolVar(&cfg.Async, "async", false, "submit batches as asynchronous jobs")
	cmd.Flags().Uint64Var(&rngSeed, "seed", 0, "random seed for reproducible data")
	cmd.Flags().BoolVar(&rank, "rank", false, "run the default ranking after a synchronous seed")
	return cmd
}

func newRankCmd(f *rootFlags) *cobra.Command {
	var (
		algorithm, start, end string
		limit                 int
		readOnly              bool
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Run a ranking and print the top companies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := f.client()
			if !readOnly {
				info, err := c.RunRanking(cmd.Context(), algorithm, start, end)
				if err != nil {
					return err
				}
				if info.Warning != nil {
					logger.Get().Warn(cmd.Context(), info.Warning.String())
				}
			}
			r, err := c.Rankings(cmd.Context(), algorithm, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "pagerank", "pagerank or birank")
	cmd.Flags().StringVar(&start, "start", "", "window start (inclusive)")
	cmd.Flags().StringVar(&end, "end", "", "window end (exclusive)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "entries to print")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "print the latest snapshot without running")
	return cmd
}

// companyQuery binds the shared window and headcount flags.
func companyQuery(cmd *cobra.Command) func() seed.Query {
	var (
		start, end string
		headcount  int
	)
	cmd.Flags().StringVar(&start, "start", "", "window start (inclusive)")
	cmd.Flags().StringVar(&end, "end", "", "window end (exclusive)")
	cmd.Flags().IntVar(&headcount, "headcount", 0, "headcount override; defaults to current employees")
	return func() seed.Query {
		q := seed.Query{Start: start, End: end}
		if cmd.Flags().Changed("headcount") {
			q.Headcount = &headcount
		}
		return q
	}
}

func newFlowCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow <company-urn>",
		Short: "Print talent-flow metrics of a company",
		Args:  cobra.ExactArgs(1),
	}
	query := companyQuery(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		m, err := f.client().Flow(cmd.Context(), args[0], query())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), m)
	}
	return cmd
}

func newSignalCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signal <company-urn>",
		Short: "Print the investment signal of a company",
		Args:  cobra.ExactArgs(1),
	}
	query := companyQuery(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := f.client().Signal(cmd.Context(), args[0], query())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), s)
	}
	return cmd
}

func newCareerCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "career <profile-urn>",
		Short: "Print the positions and moves of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.client().Career(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the event store schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				cfg, err := config.Load(cmd.Context())
				if err != nil {
					return err
				}
				dsn = cfg.Postgres.DSN
			}
			if dsn == "" {
				return errNoDSN
			}
			if err := pgstore.Migrate(dsn); err != nil {
				return err
			}
			logger.Get().Info(cmd.Context(), "event store migrated")
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres DSN; defaults to postgres.dsn from config")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

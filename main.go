package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rq-bench",
		Short:         "Benchmark a query engine against a folder of query files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	run := &cobra.Command{
		Use:   "run <config> <query-folder>",
		Short: "Evaluate every query file and append one result row per query",
		Long: `Evaluate every query file of <query-folder> against the system under test.

In exec mode <config> is passed to the command template as {config}; in http
mode it is the query endpoint URL. Every flag can also be set through an
RQBENCH_* environment variable (e.g. RQBENCH_CONCURRENCY) or a .env file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := LoadConfig(v, args[0], args[1])
			if err != nil {
				return err
			}
			_, err = NewSystem(cfg, cmd.OutOrStdout()).Run(cmd.Context())
			return err
		},
	}
	RegisterFlags(run.Flags())
	root.AddCommand(run)
	return root
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		Logger.Warnf("failed to load .env: %v", err)
	}
	if err := ConfigureLogger(); err != nil {
		Logger.Warnf("failed to apply logger settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		Logger.Errorf("benchmark failed: %v", err)
	}
	Logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

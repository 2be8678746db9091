package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/poise/internal/config"
	"github.com/saturnino-fabrica-de-software/poise/internal/replay"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "poise-replay",
		Short:         "Replay scripted landmark sequences through the analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		withReport bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run <fixture.yaml>",
		Short: "Print one envelope per scripted frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fx, err := replay.Load(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if verbose {
				logger = config.NewLogger("development")
			}

			out := cmd.OutOrStdout()
			res, err := replay.Run(cmd.Context(), fx, out, logger)
			if err != nil {
				return err
			}

			if withReport {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Report)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withReport, "report", false, "print the session report after the envelopes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stdout")
	return cmd
}

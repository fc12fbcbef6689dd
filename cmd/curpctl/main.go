// Package main is the entry point for curpctl, a command-line client for
// encoding and checking CURP codes without running the API server.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	curpService "curpkit/internal/curp/service"
	"curpkit/internal/platform/config"
	"curpkit/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for curpctl
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "curpctl",
		Short: "Compute and check the 16-character CURP code",
		Long: `curpctl computes the 16 characters of a CURP derived from personal data,
validates candidate codes and checks names against existing codes.

Example:
  curpctl encode --given "José Martín" --paternal García --maternal López \
    --birth-date 1990-05-15 --sex H --entity DF`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("log-level", "l", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newEncodeCmd(),
		newValidateCmd(),
		newMatchCmd(),
		newParseCmd(),
		newBatchCmd(),
		newEntitiesCmd(),
		newTokenCmd(),
	)
	return rootCmd
}

// newService builds a local service with logs on stderr.
func newService(cmd *cobra.Command, opts ...curpService.Option) *curpService.Service {
	level, _ := cmd.Flags().GetString("log-level")
	log := newLogger(cmd.ErrOrStderr(), level)
	return curpService.New(append([]curpService.Option{curpService.WithLogger(log)}, opts...)...)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return logger.NewWithWriter(config.Log{Level: level, Format: "text"}, w)
}

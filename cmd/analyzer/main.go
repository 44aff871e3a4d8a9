// cmd/analyzer/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xsj/sql-analyzer/internal/logging"
)

var (
	Version = "1.0.0"
)

var (
	configFile  string
	verbose     bool
	development bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sql-analyzer",
		Short: "Classify and score SQL queries for migration review",
		Long: `sql-analyzer reads a batch of SQL statements, extracts the tables, columns,
joins and temporary tables each one touches, scores its complexity and lists the
areas that need review. Results are written as JSON, CSV or Excel reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "Use the development log encoder")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newValidateCmd(),
		newMetadataCmd(),
		newTestConnectionCmd(),
		newCompareCmd(),
		newSplitCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// newLogger builds the command logger. --verbose forces debug level.
func newLogger(level string, dev bool) (*zap.Logger, error) {
	if verbose {
		level = "debug"
	}
	return logging.New(level, dev || development)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "SQL Analyzer v%s\n", Version)
		},
	}
}

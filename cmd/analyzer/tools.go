// cmd/analyzer/tools.go
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xsj/sql-analyzer/internal/analyzer"
	"github.com/0xsj/sql-analyzer/internal/config"
	"github.com/0xsj/sql-analyzer/internal/database"
	"github.com/0xsj/sql-analyzer/internal/metadata"
	"github.com/0xsj/sql-analyzer/internal/report"
)

var (
	errInvalidStatements = errors.New("one or more statements failed validation")
	errInvalidMetadata   = errors.New("metadata failed validation")
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <queries-file>",
		Short: "Run syntax sanity checks on every statement in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := analyzer.LoadQueries(args[0])
			if err != nil {
				return fmt.Errorf("error loading queries: %w", err)
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for _, q := range queries {
				v := analyzer.ValidateSyntax(q.SQL)
				state := "OK"
				if !v.IsValid {
					state = "INVALID"
					invalid++
				}
				fmt.Fprintf(out, "%s: %s\n", q.Name, state)
				for _, e := range v.Errors {
					fmt.Fprintf(out, "  error: %s\n", e)
				}
				for _, w := range v.Warnings {
					fmt.Fprintf(out, "  warning: %s\n", w)
				}
			}

			fmt.Fprintf(out, "\n%d statements, %d invalid\n", len(queries), invalid)
			if invalid > 0 {
				return errInvalidStatements
			}
			return nil
		},
	}
}

func newMetadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Inspect or create table metadata files",
	}

	inspect := &cobra.Command{
		Use:   "inspect <metadata-file>",
		Short: "Load a metadata file and print its validation summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := metadata.Load(args[0])
			if err != nil && !errors.Is(err, metadata.ErrNoMetadata) {
				return err
			}

			r := metadata.Validate(tables)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Tables: %d\n", r.Summary.TotalTables)
			fmt.Fprintf(out, "Fields: %d\n", r.Summary.TotalFields)
			for _, name := range metadata.TableNames(tables) {
				fmt.Fprintf(out, "  %s (%d fields)\n", name, len(tables[name]))
			}

			types := make([]string, 0, len(r.Summary.DataTypeDistribution))
			for t := range r.Summary.DataTypeDistribution {
				types = append(types, t)
			}
			sort.Strings(types)
			if len(types) > 0 {
				fmt.Fprintln(out, "Data types:")
			}
			for _, t := range types {
				fmt.Fprintf(out, "  %s: %d\n", t, r.Summary.DataTypeDistribution[t])
			}

			for _, w := range r.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range r.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			if !r.IsValid {
				return errInvalidMetadata
			}
			return nil
		},
	}

	sample := &cobra.Command{
		Use:   "sample <file.xlsx>",
		Short: "Write an example metadata workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := metadata.WriteSample(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample metadata written to %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(inspect, sample)
	return cmd
}

func newTestConnectionCmd() *cobra.Command {
	var driverName, dsn, schema string

	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Connect to the metadata catalog and count its tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			if driverName != "" {
				cfg.Catalog.Driver = driverName
			}
			if dsn != "" {
				cfg.Catalog.DSN = dsn
			}
			if schema != "" {
				cfg.Catalog.Schema = schema
			}
			if !cfg.Catalog.Enabled() {
				return fmt.Errorf("catalog driver and DSN are required")
			}

			logger, err := newLogger(cfg.LogLevel, cfg.Development)
			if err != nil {
				return err
			}
			defer logger.Sync()

			driver, err := database.ParseDriver(cfg.Catalog.Driver)
			if err != nil {
				return err
			}

			info, err := database.TestConnection(cmd.Context(), driver, cfg.Catalog.DSN, cfg.Catalog.Schema, logger)
			if err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}

			logger.Info("Connection successful",
				zap.String("driver", string(info.Driver)),
				zap.String("version", info.Version),
				zap.Duration("ping_time", info.PingTime),
				zap.Int("tables", info.TableCount))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Driver: %s\n", info.Driver)
			fmt.Fprintf(out, "Version: %s\n", info.Version)
			fmt.Fprintf(out, "Connect Time: %s\n", report.FormatDuration(info.PingTime))
			fmt.Fprintf(out, "Tables: %d\n", info.TableCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&driverName, "catalog-driver", "", "Catalog driver: mysql, postgres or sqlserver")
	cmd.Flags().StringVar(&dsn, "catalog-dsn", "", "Catalog connection string")
	cmd.Flags().StringVar(&schema, "catalog-schema", "", "Catalog schema to read")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "compare <before.json> <after.json>",
		Short: "Compare complexity scores of two saved runs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := report.LoadRun(args[0])
			if err != nil {
				return err
			}
			after, err := report.LoadRun(args[1])
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("error creating output directory: %w", err)
			}
			path, err := report.SaveComparisonJSON(before, after, outputDir)
			if err != nil {
				return err
			}

			c := report.CompareRuns(before, after)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Comparing %s -> %s\n", before.Label, after.Label)
			fmt.Fprintf(out, "Matched Queries: %d\n", len(c.Queries))
			fmt.Fprintf(out, "Improved: %d, Regressed: %d, Unchanged: %d\n", c.Improved, c.Regressed, c.Unchanged)
			fmt.Fprintf(out, "Average Score Change: %+.2f\n", c.AvgScoreChange)
			fmt.Fprintf(out, "Comparison saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory for the comparison report")
	return cmd
}

func newSplitCmd() *cobra.Command {
	var queryType string
	var limit int

	cmd := &cobra.Command{
		Use:   "split <script.sql> <queries.json>",
		Short: "Split a SQL script into a named JSON query list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			queries, err := analyzer.LoadQueries(args[0])
			if err != nil {
				return fmt.Errorf("error loading queries: %w", err)
			}
			queries, err = analyzer.SelectQueries(queries, queryType, limit)
			if err != nil {
				return err
			}
			if err := analyzer.SaveQueries(queries, args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d queries to %s in %s\n",
				len(queries), args[1], report.FormatDuration(time.Since(start)))
			return nil
		},
	}

	cmd.Flags().StringVar(&queryType, "type", "all", "Only keep queries of this type")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of queries to keep (0 = no limit)")
	return cmd
}

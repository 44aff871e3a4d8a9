// cmd/analyzer/analyze.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xsj/sql-analyzer/internal/analyzer"
	"github.com/0xsj/sql-analyzer/internal/config"
	"github.com/0xsj/sql-analyzer/internal/database"
	"github.com/0xsj/sql-analyzer/internal/metadata"
	"github.com/0xsj/sql-analyzer/internal/model"
	"github.com/0xsj/sql-analyzer/internal/report"
)

type analyzeFlags struct {
	queriesFile   string
	metadataFile  string
	outputDir     string
	label         string
	formats       []string
	queryType     string
	limit         int
	concurrency   int
	timeout       time.Duration
	catalogDriver string
	catalogDSN    string
	catalogSchema string
	noTempTables  bool
	noJoinDetails bool
	noColumnUsage bool
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a batch of queries and write reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, &f)
		},
	}

	cmd.Flags().StringVarP(&f.queriesFile, "queries", "q", "", "Path to queries file, .sql or .json (overrides config)")
	cmd.Flags().StringVarP(&f.metadataFile, "metadata", "m", "", "Path to table metadata file (overrides config)")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().StringVarP(&f.label, "label", "l", "", "Run label (overrides config)")
	cmd.Flags().StringSliceVarP(&f.formats, "format", "f", nil, "Report formats: json, csv, xlsx (overrides config)")
	cmd.Flags().StringVar(&f.queryType, "type", "all", "Only analyze queries of this type")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of queries to analyze (0 = no limit)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Concurrent analyses (overrides config)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Per-query analysis timeout (overrides config)")
	cmd.Flags().StringVar(&f.catalogDriver, "catalog-driver", "", "Catalog driver: mysql, postgres or sqlserver")
	cmd.Flags().StringVar(&f.catalogDSN, "catalog-dsn", "", "Catalog connection string")
	cmd.Flags().StringVar(&f.catalogSchema, "catalog-schema", "", "Catalog schema to read")
	cmd.Flags().BoolVar(&f.noTempTables, "no-temp-tables", false, "Skip temporary table detection")
	cmd.Flags().BoolVar(&f.noJoinDetails, "no-join-details", false, "Skip detailed join analysis")
	cmd.Flags().BoolVar(&f.noColumnUsage, "no-column-usage", false, "Skip column usage tracking")

	return cmd
}

func (f *analyzeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if f.queriesFile != "" {
		cfg.QueriesFile = f.queriesFile
	}
	if f.metadataFile != "" {
		cfg.MetadataFile = f.metadataFile
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if f.label != "" {
		cfg.Label = f.label
	}
	if flags.Changed("format") {
		cfg.Formats = f.formats
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if flags.Changed("timeout") {
		cfg.QueryTimeout = f.timeout
	}
	if f.catalogDriver != "" {
		cfg.Catalog.Driver = f.catalogDriver
	}
	if f.catalogDSN != "" {
		cfg.Catalog.DSN = f.catalogDSN
	}
	if f.catalogSchema != "" {
		cfg.Catalog.Schema = f.catalogSchema
	}
	if f.noTempTables {
		cfg.Analysis.IncludeTempTables = false
	}
	if f.noJoinDetails {
		cfg.Analysis.DetailedJoinAnalysis = false
	}
	if f.noColumnUsage {
		cfg.Analysis.ColumnUsageTracking = false
	}

	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, f *analyzeFlags) error {
	start := time.Now()
	ctx := cmd.Context()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := f.apply(cmd, cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Created {
		logger.Info("Created default config file", zap.String("path", configFile))
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	queries, err := analyzer.LoadQueries(cfg.QueriesFile)
	if err != nil {
		return fmt.Errorf("error loading queries: %w", err)
	}
	queries, err = analyzer.SelectQueries(queries, f.queryType, f.limit)
	if err != nil {
		return err
	}
	logger.Info("Loaded queries",
		zap.Int("count", len(queries)),
		zap.String("file", cfg.QueriesFile),
		zap.String("type", f.queryType))

	tables, err := loadMetadata(ctx, cfg, logger)
	if err != nil {
		return err
	}

	a := analyzer.New(cfg.Analysis, tables,
		analyzer.WithLogger(logger),
		analyzer.WithConcurrency(cfg.Concurrency),
		analyzer.WithQueryTimeout(cfg.QueryTimeout),
		analyzer.WithLabel(cfg.Label))

	run := a.AnalyzeBatch(ctx, queries)
	impact := report.CalculateImpact(run.Results)

	if err := writeReports(cfg, run, impact, tables, logger); err != nil {
		return err
	}

	report.PrintSummary(cmd.OutOrStdout(), run, impact)

	logger.Info("Analysis completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// loadMetadata reads the metadata file and the live catalog when configured.
// Catalog entries replace file entries for the same table.
func loadMetadata(ctx context.Context, cfg *config.Config, logger *zap.Logger) (model.TableMetadata, error) {
	var tables model.TableMetadata

	if cfg.MetadataFile != "" {
		fileTables, err := metadata.Load(cfg.MetadataFile)
		if err != nil {
			return nil, fmt.Errorf("error loading metadata: %w", err)
		}
		logger.Info("Loaded metadata",
			zap.String("file", cfg.MetadataFile),
			zap.Int("tables", len(fileTables)))
		tables = fileTables
	}

	if cfg.Catalog.Enabled() {
		driver, err := database.ParseDriver(cfg.Catalog.Driver)
		if err != nil {
			return nil, err
		}

		catalog, err := database.Connect(ctx, driver, cfg.Catalog.DSN, logger)
		if err != nil {
			return nil, err
		}
		defer catalog.Close()

		catalogTables, err := database.DiscoverMetadata(ctx, catalog, cfg.Catalog.Schema)
		if err != nil {
			return nil, err
		}
		logger.Info("Discovered catalog metadata",
			zap.String("driver", string(driver)),
			zap.Int("tables", len(catalogTables)))
		tables = metadata.Merge(tables, catalogTables)
	}

	if len(tables) == 0 {
		logger.Warn("No table metadata available, table checks use name heuristics only")
	}
	return tables, nil
}

func writeReports(cfg *config.Config, run model.RunResult, impact model.ImpactAnalysis, tables model.TableMetadata, logger *zap.Logger) error {
	var written []string
	save := func(path string, err error) error {
		if err != nil {
			return fmt.Errorf("error generating reports: %w", err)
		}
		written = append(written, path)
		return nil
	}

	if cfg.HasFormat("json") {
		if err := save(report.SaveJSON(run, cfg.OutputDir)); err != nil {
			return err
		}
		if err := save(report.SaveSummaryJSON(run, impact, cfg.OutputDir)); err != nil {
			return err
		}
	}
	if cfg.HasFormat("csv") {
		if err := save(report.SaveCSV(run, cfg.OutputDir)); err != nil {
			return err
		}
		if err := save(report.SaveChangeAreasCSV(run, cfg.OutputDir)); err != nil {
			return err
		}
		if err := save(report.SaveTableUsageCSV(run, tables, cfg.OutputDir)); err != nil {
			return err
		}
	}
	if cfg.HasFormat("xlsx") {
		if err := save(report.SaveExcel(run, impact, tables, cfg.OutputDir)); err != nil {
			return err
		}
	}

	for _, path := range written {
		logger.Info("Report saved", zap.String("path", path))
	}
	return nil
}

// internal/database/connection.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"
)

var ErrUnsupportedDriver = errors.New("unsupported catalog driver")

// Driver identifies a catalog database engine.
type Driver string

const (
	DriverMySQL     Driver = "mysql"
	DriverPostgres  Driver = "postgres"
	DriverSQLServer Driver = "sqlserver"
)

var driverAliases = map[string]Driver{
	"mysql":      DriverMySQL,
	"mariadb":    DriverMySQL,
	"postgres":   DriverPostgres,
	"postgresql": DriverPostgres,
	"pg":         DriverPostgres,
	"pgx":        DriverPostgres,
	"sqlserver":  DriverSQLServer,
	"mssql":      DriverSQLServer,
}

// ParseDriver normalizes a driver name.
func ParseDriver(name string) (Driver, error) {
	if d, ok := driverAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
}

// Catalog reads column definitions from a live database.
type Catalog interface {
	Driver() Driver
	Ping(ctx context.Context) error
	Version(ctx context.Context) (string, error)
	Columns(ctx context.Context, schema string) ([]ColumnRow, error)
	Close() error
}

// Connect opens a catalog connection and verifies it with a ping.
func Connect(ctx context.Context, driver Driver, dsn string, logger *zap.Logger) (Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		catalog Catalog
		err     error
	)

	switch driver {
	case DriverPostgres:
		catalog, err = openPostgres(ctx, dsn, logger)
	case DriverMySQL, DriverSQLServer:
		catalog, err = openSQL(driver, dsn, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	if err := catalog.Ping(ctx); err != nil {
		catalog.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	logger.Debug("Connected to catalog", zap.String("driver", string(driver)))
	return catalog, nil
}

// sqlCatalog serves the database/sql drivers (MySQL and SQL Server).
type sqlCatalog struct {
	driver Driver
	db     *sql.DB
	logger *zap.Logger
}

func openSQL(driver Driver, dsn string, logger *zap.Logger) (*sqlCatalog, error) {
	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Minute * 5)

	return &sqlCatalog{driver: driver, db: db, logger: logger}, nil
}

func (c *sqlCatalog) Driver() Driver { return c.driver }

func (c *sqlCatalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *sqlCatalog) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.db.QueryRowContext(ctx, versionQuery(c.driver)).Scan(&version); err != nil {
		return "", fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

func (c *sqlCatalog) Columns(ctx context.Context, schema string) ([]ColumnRow, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if c.driver == DriverSQLServer {
		rows, err = c.db.QueryContext(ctx, sqlServerColumnsQuery, sql.Named("schema", schema))
	} else {
		rows, err = c.db.QueryContext(ctx, mysqlColumnsQuery, schema)
	}
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnRow
	for rows.Next() {
		var col ColumnRow
		if err := rows.Scan(&col.Schema, &col.Table, &col.Column, &col.DataType, &col.Description); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}

func (c *sqlCatalog) Close() error {
	return c.db.Close()
}

// pgCatalog serves PostgreSQL through a pgx pool.
type pgCatalog struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func openPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*pgCatalog, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &pgCatalog{pool: pool, logger: logger}, nil
}

func (c *pgCatalog) Driver() Driver { return DriverPostgres }

func (c *pgCatalog) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *pgCatalog) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.pool.QueryRow(ctx, versionQuery(DriverPostgres)).Scan(&version); err != nil {
		return "", fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

func (c *pgCatalog) Columns(ctx context.Context, schema string) ([]ColumnRow, error) {
	rows, err := c.pool.Query(ctx, postgresColumnsQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnRow
	for rows.Next() {
		var col ColumnRow
		if err := rows.Scan(&col.Schema, &col.Table, &col.Column, &col.DataType, &col.Description); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}

func (c *pgCatalog) Close() error {
	c.pool.Close()
	return nil
}

// ConnectionInfo is what TestConnection reports about a catalog.
type ConnectionInfo struct {
	Driver     Driver        `json:"driver"`
	Version    string        `json:"version"`
	PingTime   time.Duration `json:"pingTime"`
	TableCount int           `json:"tableCount"`
}

// TestConnection connects, pings and counts the visible tables.
func TestConnection(ctx context.Context, driver Driver, dsn, schema string, logger *zap.Logger) (ConnectionInfo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info := ConnectionInfo{Driver: driver}

	start := time.Now()
	catalog, err := Connect(ctx, driver, dsn, logger)
	if err != nil {
		return info, err
	}
	defer catalog.Close()
	info.PingTime = time.Since(start)

	version, err := catalog.Version(ctx)
	if err != nil {
		logger.Warn("Could not get database version", zap.Error(err))
	}
	info.Version = version

	metadata, err := DiscoverMetadata(ctx, catalog, schema)
	if err != nil {
		return info, err
	}
	info.TableCount = len(metadata)

	return info, nil
}

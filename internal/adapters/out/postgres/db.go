package postgres

import (
	"fmt"
	"strings"
	"time"

	"handoff/internal/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures the GORM connection.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// Log receives gorm's errors and slow statements. Nil discards them.
	Log *logger.Logger
	// Debug also traces every SQL statement at debug level.
	Debug bool
}

const slowStatementThreshold = 200 * time.Millisecond

// DSN builds a libpq keyword/value connection string.
func DSN(host, port, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslMode)
}

// Open connects to postgres or sqlite. Duplicate-key violations are
// translated to gorm.ErrDuplicatedKey for both drivers.
func Open(opts Options) (*gorm.DB, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case "", DriverPostgres:
		dialector = postgres.New(postgres.Config{DSN: opts.DSN, PreferSimpleProtocol: true})
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	sqlLog := gormlogger.Discard
	if opts.Log != nil {
		level := gormlogger.Warn
		if opts.Debug {
			level = gormlogger.Info
		}
		sqlLog = opts.Log.GormLogger(level, slowStatementThreshold)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         sqlLog,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// A shared in-memory database lives as long as one connection does and
		// sqlite serialises writers anyway.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return db, nil
}

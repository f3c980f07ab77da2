package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BolajiAkerele2013/Cookit/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Handle owns the gorm connection pool. It is created once at startup,
// handed to repositories and closed on shutdown.
type Handle struct {
	gorm   *gorm.DB
	driver string
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, log *slog.Logger) (*Handle, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel(log)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if driver == DriverSQLite {
		// sqlite serializes writers; a single connection also keeps :memory: databases intact
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	h := &Handle{gorm: gormDB, driver: driver}
	if err := h.Ping(ctx); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return h, nil
}

// DB returns the gorm handle for repositories.
func (h *Handle) DB() *gorm.DB {
	return h.gorm
}

// Driver returns the configured driver name.
func (h *Handle) Driver() string {
	return h.driver
}

// Ping checks database connectivity.
func (h *Handle) Ping(ctx context.Context) error {
	sqlDB, err := h.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (h *Handle) Close() error {
	sqlDB, err := h.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the users, ideas and idea_users tables.
func (h *Handle) Migrate(ctx context.Context) error {
	if err := h.gorm.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Idea{},
		&model.IdeaRole{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops all tables, dependants first.
func (h *Handle) Reset(ctx context.Context) error {
	tables := []interface{}{
		&model.IdeaRole{},
		&model.Idea{},
		&model.User{},
	}
	for _, table := range tables {
		if err := h.gorm.WithContext(ctx).Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

func gormLogLevel(log *slog.Logger) logger.LogLevel {
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		return logger.Info
	}
	return logger.Silent
}

package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// ErrUnsupportedDriver は未知のDB_DRIVERが指定された場合に返されます。
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config はデータベース接続設定です。SQLiteではPathのみを使用します。
type Config struct {
	Driver       string
	Path         string
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はMySQL用のDSNを生成します。InstanceNameが設定されている場合はCloud SQLのUnixソケットを優先します。
func BuildDSN(cfg Config) string {
	if cfg.InstanceName != "" {
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

// BuildPostgresDSN はPostgreSQL用のDSNを生成します。
func BuildPostgresDSN(cfg Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// ConnectWithRetry はtimeoutに達するまで3秒間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	return connectWithRetry(dsn, timeout, retryInterval, opener)
}

func connectWithRetry(dsn string, timeout, interval time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(interval)
	}
}

// OpenDB は設定に応じたドライバで接続し、modelsをAutoMigrateします。
func OpenDB(cfg Config, models ...any) (*gorm.DB, error) {
	var (
		dsn    string
		opener Opener
	)
	gcfg := &gorm.Config{}

	switch cfg.Driver {
	case "", DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		dsn = cfg.Path
		opener = func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }
	case DriverMySQL:
		dsn = BuildDSN(cfg)
		opener = func(dsn string) (*gorm.DB, error) { return gorm.Open(gmysql.Open(dsn), gcfg) }
	case DriverPostgres:
		dsn = BuildPostgresDSN(cfg)
		opener = func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := ConnectWithRetry(dsn, connectTimeout, opener)
	if err != nil {
		return nil, err
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	slog.Info("database ready", "driver", cfg.Driver)
	return db, nil
}

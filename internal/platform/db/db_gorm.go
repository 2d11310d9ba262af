// Package db はスキャン履歴用データベースへの接続を提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"logo_scanner/internal/feature/logodetection/adapters/scanstore"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	retryInterval = 3 * time.Second
)

// ErrUnsupportedDriver はDB_DRIVERに未対応の値が指定された場合に返されます。
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config はデータベース接続の設定です。
type Config struct {
	Driver         string // "sqlite" | "postgres"。空の場合は履歴保存を行わない
	SQLitePath     string
	User           string
	Password       string
	Name           string
	Host           string
	Port           string
	InstanceName   string // Cloud SQLのインスタンス接続名
	SSLMode        string
	RunMigrations  bool
	ConnectTimeout time.Duration
}

// Enabled はデータベースが構成されているかを返します。
func (c Config) Enabled() bool {
	return c.Driver != ""
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:         strings.ToLower(os.Getenv("DB_DRIVER")),
		SQLitePath:     os.Getenv("DB_PATH"),
		User:           os.Getenv("DB_USER"),
		Password:       os.Getenv("DB_PASSWORD"),
		Name:           os.Getenv("DB_NAME"),
		Host:           os.Getenv("DB_HOST"),
		Port:           os.Getenv("DB_PORT"),
		InstanceName:   os.Getenv("INSTANCE_CONNECTION_NAME"),
		SSLMode:        os.Getenv("DB_SSLMODE"),
		RunMigrations:  os.Getenv("RUN_MIGRATIONS") == "true",
		ConnectTimeout: 60 * time.Second,
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "./logo_scanner.db"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	return cfg
}

// BuildDSN はPostgreSQL用のkey=value形式のDSN文字列を生成します。空の項目は出力しません。
// InstanceNameが設定されている場合はCloud SQLのUnixソケット接続が優先されます。
func BuildDSN(cfg Config) string {
	kv := [][2]string{{"host", cfg.Host}, {"port", cfg.Port}}
	if cfg.InstanceName != "" {
		kv = [][2]string{{"host", "/cloudsql/" + cfg.InstanceName}}
	}
	kv = append(kv,
		[2]string{"user", cfg.User},
		[2]string{"password", cfg.Password},
		[2]string{"dbname", cfg.Name},
		[2]string{"sslmode", cfg.SSLMode},
	)

	parts := make([]string, 0, len(kv))
	for _, p := range kv {
		if p[1] != "" {
			parts = append(parts, p[0]+"="+p[1])
		}
	}
	return strings.Join(parts, " ")
}

// ConnectWithRetry はtimeoutに達するまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB接続に失敗、再試行します", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// OpenDB は設定に従ってデータベースを開き、必要に応じてマイグレーションを実行します。
// SQLiteの場合はローカル利用を想定し、常にマイグレーションを実行します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	var (
		db      *gorm.DB
		err     error
		migrate = cfg.RunMigrations
	)

	switch cfg.Driver {
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %s: %w", cfg.SQLitePath, err)
		}
		migrate = true
		slog.Info("SQLiteを使用", "path", cfg.SQLitePath)
	case DriverPostgres:
		dsn := BuildDSN(cfg)
		// gormに渡す前にpgxでDSNを検証し、設定ミスをリトライせずに検出する
		if _, err := pgx.ParseConfig(dsn); err != nil {
			return nil, fmt.Errorf("invalid postgres config: %w", err)
		}
		db, err = ConnectWithRetry(dsn, cfg.ConnectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	if migrate {
		if err := db.AutoMigrate(scanstore.Models()...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

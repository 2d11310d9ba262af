package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"logo_scanner/internal/feature/logodetection/adapters/scanstore"
)

// TestBuildDSN_TCP はTCP接続用のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN_TCP(t *testing.T) {
	t.Parallel()

	cfg := Config{
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		Host:     "localhost",
		Port:     "5432",
		SSLMode:  "disable",
	}

	dsn := BuildDSN(cfg)

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestBuildDSN_CloudSQLTakesPrecedence はInstanceNameとHost/Portが両方設定されている場合にInstanceNameが優先されることを検証します。
func TestBuildDSN_CloudSQLTakesPrecedence(t *testing.T) {
	t.Parallel()

	cfg := Config{
		User:         "testuser",
		Password:     "testpass",
		Name:         "testdb",
		Host:         "localhost",
		Port:         "5432",
		InstanceName: "project:region:instance",
		SSLMode:      "disable",
	}

	dsn := BuildDSN(cfg)

	expected := "host=/cloudsql/project:region:instance user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attemptCount)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel because this test takes time due to retry sleeps

	mockDB := &gorm.DB{}
	attemptCount := 0

	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	// Use a timeout that allows for 2 retries (retry interval is 3 seconds)
	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attemptCount)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	errRefused := errors.New("connection refused")
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, errRefused
	}

	start := time.Now()
	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)

	require.ErrorIs(t, err, errRefused)
	assert.GreaterOrEqual(t, attemptCount, 1)
	assert.Less(t, time.Since(start), retryInterval, "sleep is capped by the remaining timeout")
}

// TestLoadConfigFromEnv は環境変数からデータベース設定が正しく読み込まれることを検証します。
func TestLoadConfigFromEnv(t *testing.T) {
	// Note: Not running in parallel since we're modifying environment variables
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_PATH", "")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("INSTANCE_CONNECTION_NAME", "")
	t.Setenv("RUN_MIGRATIONS", "true")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "envpass", cfg.Password)
	assert.Equal(t, "envdb", cfg.Name)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, "5433", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, "./logo_scanner.db", cfg.SQLitePath)
	assert.True(t, cfg.RunMigrations)
}

// TestLoadConfigFromEnv_Disabled はDB_DRIVER未設定時に履歴DBが無効になることを検証します。
func TestLoadConfigFromEnv_Disabled(t *testing.T) {
	t.Setenv("DB_DRIVER", "")

	assert.False(t, LoadConfigFromEnv().Enabled())
}

// TestOpenDB_SQLite はSQLiteでの接続とマイグレーションを検証します。
func TestOpenDB_SQLite(t *testing.T) {
	t.Parallel()

	cfg := Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "history.db")}

	db, err := OpenDB(cfg)

	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&scanstore.ScanRunModel{}))
	assert.True(t, db.Migrator().HasTable(&scanstore.DetectionModel{}))
}

// TestOpenDB_Errors は不正な設定でエラーが返されることを検証します。
func TestOpenDB_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported driver", func(t *testing.T) {
		t.Parallel()

		_, err := OpenDB(Config{Driver: "mysql"})
		require.ErrorIs(t, err, ErrUnsupportedDriver)
	})

	t.Run("invalid postgres port", func(t *testing.T) {
		t.Parallel()

		_, err := OpenDB(Config{Driver: DriverPostgres, Host: "localhost", Port: "not-a-port", SSLMode: "disable"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid postgres config")
	})
}

// TestBuildDSN_OmitsEmptyValues は空の項目がDSNに含まれないことを検証します。
func TestBuildDSN_OmitsEmptyValues(t *testing.T) {
	t.Parallel()

	dsn := BuildDSN(Config{Host: "localhost", User: "scanner", Name: "logos"})

	assert.Equal(t, "host=localhost user=scanner dbname=logos", dsn)
}

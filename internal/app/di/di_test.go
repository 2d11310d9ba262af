package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"logo_scanner/internal/feature/logodetection/adapters/vision"
)

func TestNewScanRepository(t *testing.T) {
	assert.Nil(t, NewScanRepository(nil))

	db, err := gorm.Open(sqlite.Open("file:di_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	assert.NotNil(t, NewScanRepository(db))
}

func TestNewLogoDetector_MissingCredentials(t *testing.T) {
	_, closeFn, err := NewLogoDetector(context.Background(),
		vision.Config{CredentialsFile: "/nonexistent/creds.json"}, nil, 0)

	require.ErrorIs(t, err, vision.ErrCredentialsNotFound)
	assert.Nil(t, closeFn)
}

func TestInfra_ChecksAndClose_Unconfigured(t *testing.T) {
	infra := &Infra{}

	assert.Empty(t, infra.Checks())
	assert.NoError(t, infra.Close())
}

func TestInfra_Checks_Database(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:di_checks?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	infra := &Infra{DB: db}

	checks := infra.Checks()
	require.Contains(t, checks, "database")
	assert.NoError(t, checks["database"](context.Background()))
	assert.NoError(t, infra.Close())
}

func TestNewInfra_NothingConfigured(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("DB_DRIVER", "")

	infra, err := NewInfra(context.Background())

	require.NoError(t, err)
	assert.Nil(t, infra.Redis)
	assert.Nil(t, infra.DB)
}

package telemetry

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mockDB
}

func TestDBTracingPlugin_DisabledSkipsRegistration(t *testing.T) {
	db, mockDB := setupMockDB(t)
	defer mockDB.Close()

	cfg := DefaultDBTracingConfig()
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	require.NoError(t, plugin.Register(db))

	// otelgorm was not installed
	require.Empty(t, db.Config.Plugins)
}

func TestDBTracingPlugin_EnabledRegistersCallbacks(t *testing.T) {
	db, mockDB := setupMockDB(t)
	defer mockDB.Close()

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	require.NoError(t, plugin.Register(db))
	require.NotEmpty(t, db.Config.Plugins)
}

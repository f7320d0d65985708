package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openMockDB wires a sqlmock connection through the postgres dialector so
// tests can assert the exact SQL GORM emits.
func openMockDB(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

type indentRow struct {
	ID       uint
	TenantID string
	Code     string
}

func TestDatabase_WithTenant(t *testing.T) {
	t.Run("scopes every query to the tenant", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		tenantID := "550e8400-e29b-41d4-a716-446655440000"
		mock.ExpectQuery(`SELECT \* FROM "indent_rows" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code"}).
				AddRow(1, tenantID, "IND-2026-0001"))

		var rows []indentRow
		require.NoError(t, db.WithTenant(tenantID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, "IND-2026-0001", rows[0].Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("leaves the root handle unscoped", func(t *testing.T) {
		db, _, raw := openMockDB(t)
		defer raw.Close()

		original := db.DB
		scoped := db.WithTenant("plant-a")

		assert.NotEqual(t, original, scoped)
		assert.Equal(t, original, db.DB)
	})

	t.Run("panics on an empty tenant ID", func(t *testing.T) {
		db, _, raw := openMockDB(t)
		defer raw.Close()

		assert.Panics(t, func() { db.WithTenant("") })
	})

	t.Run("hostile tenant values stay parameterized", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		tenantID := "plant'; DROP TABLE indents; --"
		mock.ExpectQuery(`SELECT \* FROM "indent_rows" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code"}))

		var rows []indentRow
		require.NoError(t, db.WithTenant(tenantID).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("two tenants get independent scopes", func(t *testing.T) {
		db, _, raw := openMockDB(t)
		defer raw.Close()

		assert.NotEqual(t, db.WithTenant("plant-a"), db.WithTenant("plant-b"))
	})
}

func TestDatabase_WithTenant_ComposesWithQueryClauses(t *testing.T) {
	type materialRow struct {
		ID       uint
		TenantID string
		Name     string
		Active   bool
	}

	t.Run("extra where clauses append after the tenant filter", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		mock.ExpectQuery(`SELECT \* FROM "material_rows" WHERE tenant_id = \$1 AND active = \$2`).
			WithArgs("plant-a", true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "active"}).
				AddRow(1, "plant-a", "MS Angle 50x50", true))

		var rows []materialRow
		err := db.WithTenant("plant-a").Where("active = ?", true).Find(&rows).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ordering survives the scope", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		mock.ExpectQuery(`SELECT \* FROM "indent_rows" WHERE tenant_id = \$1 ORDER BY code ASC`).
			WithArgs("plant-a").
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code"}).
				AddRow(1, "plant-a", "IND-2026-0001").
				AddRow(2, "plant-a", "IND-2026-0002"))

		var rows []indentRow
		err := db.WithTenant("plant-a").Order("code ASC").Find(&rows).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pagination survives the scope", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		mock.ExpectQuery(`SELECT \* FROM "indent_rows" WHERE tenant_id = \$1 LIMIT \$2 OFFSET \$3`).
			WithArgs("plant-a", 10, 5).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code"}).
				AddRow(6, "plant-a", "IND-2026-0006"))

		var rows []indentRow
		err := db.WithTenant("plant-a").Limit(10).Offset(5).Find(&rows).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits when the callback succeeds", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		mock.ExpectBegin()
		// GORM inserts through Query on postgres because of RETURNING.
		mock.ExpectQuery(`INSERT INTO "indent_rows"`).
			WithArgs("plant-a", "IND-2026-0001").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&indentRow{TenantID: "plant-a", Code: "IND-2026-0001"}).Error
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, raw := openMockDB(t)
	defer raw.Close()

	stats, err := db.Stats()
	require.NoError(t, err)

	// A fresh mock pool reports zeroes, but every counter must be sane.
	assert.GreaterOrEqual(t, stats.MaxOpenConnections, 0)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.InUse, 0)
	assert.GreaterOrEqual(t, stats.Idle, 0)
	assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
	assert.GreaterOrEqual(t, stats.MaxIdleClosed, int64(0))
	assert.GreaterOrEqual(t, stats.MaxIdleTimeClosed, int64(0))
	assert.GreaterOrEqual(t, stats.MaxLifetimeClosed, int64(0))
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("delegates to the underlying pool", func(t *testing.T) {
		db, mock, raw := openMockDB(t)
		defer raw.Close()

		mock.ExpectPing()
		require.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with ping monitoring enabled", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockDB.Close()

		// GORM pings once while opening the connection.
		mock.ExpectPing()

		gormDB, err := gorm.Open(postgres.New(postgres.Config{
			Conn:       mockDB,
			DriverName: "postgres",
		}), &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)

		db := &Database{DB: gormDB}
		mock.ExpectPing()

		require.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := openMockDB(t)

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

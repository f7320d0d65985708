package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add indents table", "add_indents_table"},
		{"Add-Indents-Table", "add_indents_table"},
		{"ADD_INDENTS_TABLE", "add_indents_table"},
		{"add__indents__table", "add_indents_table"},
		{"Add Indents 123", "add_indents_123"},
		{"create-material-machine", "create_material_machine"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add indents table", "Create indents table with workflow state")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// Version prefix is YYYYMMDDHHMMSS.
	assert.Len(t, mf.Version, 14)

	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase, "up and down files must pair")

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add indents table")
	assert.Contains(t, string(upContent), "Create indents table with workflow state")
	assert.Contains(t, string(upContent), "Write your UP migration SQL here")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
	assert.Contains(t, string(downContent), "Write your DOWN migration SQL here")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(nested, "test", "test migration")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	writeFiles := func(t *testing.T, dir string, names ...string) {
		t.Helper()
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0644))
		}
	}

	t.Run("lists one entry per pair", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init_schema.up.sql", "000001_init_schema.down.sql",
			"000002_add_materials.up.sql", "000002_add_materials.down.sql",
			"000003_add_indents.up.sql", "000003_add_indents.down.sql",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Len(t, migrations, 3)
		assert.Contains(t, migrations, "000001_init_schema")
		assert.Contains(t, migrations, "000002_add_materials")
		assert.Contains(t, migrations, "000003_add_indents")
	})

	t.Run("empty directory", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("ignores files that are not migrations", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init.up.sql", "000001_init.down.sql",
			"README.md", "config.yaml", ".gitkeep",
		)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, migrations)
	})

	t.Run("ignores directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "000001_init.up.sql", "000001_init.down.sql")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Len(t, migrations, 1)
	})
}

package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMigratedDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openMigratedDB(t)

	expected := []string{
		"departments", "employees", "projects",
		"workflow_domains", "workflow_processes", "workflow_subprocesses",
		"workflow_activities", "workflow_procedures", "workflow_deliverables",
		"workflow_task_formulations",
		"hierarchies", "hierarchy_domains", "hierarchy_processes", "hierarchy_subprocesses",
		"hierarchy_activities", "hierarchy_procedures", "hierarchy_deliverables",
		"hierarchy_task_formulations", "hierarchy_allowed_departments",
		"work_programs", "work_program_deliverables", "work_program_supports",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openMigratedDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestOpenDB_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workprog.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_CompletionCheckConstraint(t *testing.T) {
	db := openMigratedDB(t)

	insert := `INSERT INTO work_programs (id, name, completion_pct, created_at, updated_at)
		VALUES (?, 'x', ?, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`

	_, err := db.Exec(insert, "ok", 100.0)
	require.NoError(t, err)

	_, err = db.Exec(insert, "over", 100.5)
	require.Error(t, err)
	assert.True(t, IsCheckViolation(err))

	_, err = db.Exec(insert, "under", -1.0)
	require.Error(t, err)
	assert.True(t, IsCheckViolation(err))
}

func TestMigrate_ParentDeleteRestricted(t *testing.T) {
	db := openMigratedDB(t)

	_, err := db.Exec(`INSERT INTO workflow_activities (id, ref_key, name, created_at, updated_at)
		VALUES ('a1', 'review', 'Review', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO workflow_procedures (id, ref_key, name, parent_id, created_at, updated_at)
		VALUES ('p1', 'sample', 'Sample', 'a1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM workflow_activities WHERE id = 'a1'`)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM workflow_procedures`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMigrate_RefKeyUnique(t *testing.T) {
	db := openMigratedDB(t)

	insert := `INSERT INTO workflow_domains (id, ref_key, name, created_at, updated_at)
		VALUES (?, 'finance', 'Finance', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`
	_, err := db.Exec(insert, "d1")
	require.NoError(t, err)
	_, err = db.Exec(insert, "d2")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Master data
	`CREATE TABLE IF NOT EXISTS departments (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		dpt_type   TEXT NOT NULL DEFAULT '' CHECK(dpt_type IN ('', 'internal', 'external')),
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		department_id TEXT REFERENCES departments(id) ON DELETE SET NULL,
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		project_type TEXT NOT NULL DEFAULT '' CHECK(project_type IN ('', 'internal', 'external')),
		created_at   TEXT NOT NULL
	)`,

	// Workflow hierarchy. Parent references are RESTRICT so a parent with
	// children can never be removed.
	`CREATE TABLE IF NOT EXISTS workflow_domains (
		id          TEXT PRIMARY KEY,
		ref_key     TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		domain_type TEXT NOT NULL DEFAULT 'internal' CHECK(domain_type IN ('internal', 'external')),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workflow_processes (
		id         TEXT PRIMARY KEY,
		ref_key    TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		parent_id  TEXT REFERENCES workflow_domains(id) ON DELETE RESTRICT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workflow_subprocesses (
		id         TEXT PRIMARY KEY,
		ref_key    TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		parent_id  TEXT REFERENCES workflow_processes(id) ON DELETE RESTRICT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workflow_activities (
		id         TEXT PRIMARY KEY,
		ref_key    TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		parent_id  TEXT REFERENCES workflow_subprocesses(id) ON DELETE RESTRICT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workflow_procedures (
		id         TEXT PRIMARY KEY,
		ref_key    TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		parent_id  TEXT REFERENCES workflow_activities(id) ON DELETE RESTRICT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workflow_deliverables (
		id         TEXT PRIMARY KEY,
		ref_key    TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		parent_id  TEXT REFERENCES workflow_activities(id) ON DELETE RESTRICT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS workflow_task_formulations (
		id         TEXT PRIMARY KEY,
		ref_key    TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		parent_id  TEXT REFERENCES workflow_procedures(id) ON DELETE RESTRICT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	// Hierarchy aggregates and their independent link sets
	`CREATE TABLE IF NOT EXISTS hierarchies (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		department_id TEXT REFERENCES departments(id) ON DELETE SET NULL,
		project_id    TEXT REFERENCES projects(id) ON DELETE SET NULL,
		notes         TEXT NOT NULL DEFAULT '',
		active        INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_domains (
		hierarchy_id TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		entity_id    TEXT NOT NULL REFERENCES workflow_domains(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_processes (
		hierarchy_id TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		entity_id    TEXT NOT NULL REFERENCES workflow_processes(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_subprocesses (
		hierarchy_id TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		entity_id    TEXT NOT NULL REFERENCES workflow_subprocesses(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_activities (
		hierarchy_id TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		entity_id    TEXT NOT NULL REFERENCES workflow_activities(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_procedures (
		hierarchy_id TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		entity_id    TEXT NOT NULL REFERENCES workflow_procedures(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_deliverables (
		hierarchy_id TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		entity_id    TEXT NOT NULL REFERENCES workflow_deliverables(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_task_formulations (
		hierarchy_id TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		entity_id    TEXT NOT NULL REFERENCES workflow_task_formulations(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS hierarchy_allowed_departments (
		hierarchy_id  TEXT NOT NULL REFERENCES hierarchies(id) ON DELETE CASCADE,
		department_id TEXT NOT NULL REFERENCES departments(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (hierarchy_id, department_id)
	)`,

	// Work programs
	`CREATE TABLE IF NOT EXISTS work_programs (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		owner_id            TEXT NOT NULL DEFAULT '',
		department_id       TEXT REFERENCES departments(id) ON DELETE SET NULL,
		project_id          TEXT REFERENCES projects(id) ON DELETE RESTRICT,
		activity_id         TEXT REFERENCES workflow_activities(id) ON DELETE RESTRICT,
		procedure_id        TEXT REFERENCES workflow_procedures(id) ON DELETE RESTRICT,
		task_description_id TEXT REFERENCES workflow_task_formulations(id) ON DELETE RESTRICT,
		responsible_id      TEXT REFERENCES employees(id) ON DELETE RESTRICT,
		inputs_needed       TEXT NOT NULL DEFAULT '',
		priority            TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high')),
		complexity          TEXT NOT NULL DEFAULT 'medium' CHECK(complexity IN ('low', 'medium', 'high')),
		status              TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'ongoing', 'done', 'cancelled')),
		satisfaction        TEXT NOT NULL DEFAULT '' CHECK(satisfaction IN ('', 'low', 'medium', 'high')),
		month               TEXT NOT NULL DEFAULT '',
		week_of             INTEGER NOT NULL DEFAULT 0 CHECK(week_of >= 0 AND week_of <= 53),
		week_start          TEXT,
		assignment_date     TEXT,
		initial_deadline    TEXT,
		actual_deadline     TEXT,
		duration_hours      REAL NOT NULL DEFAULT 0 CHECK(duration_hours >= 0),
		postpone_count      INTEGER NOT NULL DEFAULT 0 CHECK(postpone_count >= 0),
		completion_pct      REAL NOT NULL DEFAULT 0 CHECK(completion_pct >= 0 AND completion_pct <= 100),
		field1              TEXT NOT NULL DEFAULT '',
		field2              TEXT NOT NULL DEFAULT '',
		comments            TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS work_program_deliverables (
		work_program_id TEXT NOT NULL REFERENCES work_programs(id) ON DELETE CASCADE,
		deliverable_id  TEXT NOT NULL REFERENCES workflow_deliverables(id) ON DELETE CASCADE,
		position        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (work_program_id, deliverable_id)
	)`,
	`CREATE TABLE IF NOT EXISTS work_program_supports (
		work_program_id TEXT NOT NULL REFERENCES work_programs(id) ON DELETE CASCADE,
		employee_id     TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		position        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (work_program_id, employee_id)
	)`,

	// Name lookups back the importers' first-match resolution.
	`CREATE INDEX IF NOT EXISTS idx_departments_name ON departments(name)`,
	`CREATE INDEX IF NOT EXISTS idx_departments_type ON departments(dpt_type)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_name ON employees(name)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_domains_name ON workflow_domains(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_processes_name ON workflow_processes(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_processes_parent ON workflow_processes(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_subprocesses_name ON workflow_subprocesses(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_subprocesses_parent ON workflow_subprocesses(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_activities_name ON workflow_activities(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_activities_parent ON workflow_activities(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_procedures_name ON workflow_procedures(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_procedures_parent ON workflow_procedures(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_deliverables_name ON workflow_deliverables(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_deliverables_parent ON workflow_deliverables(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_task_formulations_name ON workflow_task_formulations(name)`,
	`CREATE INDEX IF NOT EXISTS idx_workflow_task_formulations_parent ON workflow_task_formulations(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_hierarchies_name ON hierarchies(name)`,
	`CREATE INDEX IF NOT EXISTS idx_work_programs_name ON work_programs(name)`,
	`CREATE INDEX IF NOT EXISTS idx_work_programs_status ON work_programs(status)`,
	`CREATE INDEX IF NOT EXISTS idx_work_programs_department ON work_programs(department_id)`,
}

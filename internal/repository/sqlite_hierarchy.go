package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/domain"
)

// SQLiteHierarchyRepo implements HierarchyRepo. Each link set lives in its
// own hierarchy_<kind> table.
type SQLiteHierarchyRepo struct {
	db db.DBTX
}

func NewSQLiteHierarchyRepo(conn db.DBTX) *SQLiteHierarchyRepo {
	return &SQLiteHierarchyRepo{db: conn}
}

func hierarchyLinkTable(kind domain.EntityKind) string {
	switch kind {
	case domain.KindDomain:
		return "hierarchy_domains"
	case domain.KindProcess:
		return "hierarchy_processes"
	case domain.KindSubprocess:
		return "hierarchy_subprocesses"
	case domain.KindActivity:
		return "hierarchy_activities"
	case domain.KindProcedure:
		return "hierarchy_procedures"
	case domain.KindDeliverable:
		return "hierarchy_deliverables"
	case domain.KindTaskFormulation:
		return "hierarchy_task_formulations"
	}
	return ""
}

const hierarchyColumns = `SELECT id, name, department_id, project_id, notes, active, created_at, updated_at FROM hierarchies`

func (r *SQLiteHierarchyRepo) Create(ctx context.Context, h *domain.Hierarchy) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hierarchies (id, name, department_id, project_id, notes, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name,
		nullableString(h.DepartmentID), nullableString(h.ProjectID),
		h.Notes, boolToInt(h.Active),
		h.CreatedAt.Format(time.RFC3339), h.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting hierarchy: %w", wrapRefViolation(err))
	}
	return r.writeLinks(ctx, h)
}

func (r *SQLiteHierarchyRepo) Update(ctx context.Context, h *domain.Hierarchy) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hierarchies SET name = ?, department_id = ?, project_id = ?, notes = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		h.Name,
		nullableString(h.DepartmentID), nullableString(h.ProjectID),
		h.Notes, boolToInt(h.Active),
		h.UpdatedAt.Format(time.RFC3339),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("updating hierarchy: %w", wrapRefViolation(err))
	}
	if err := requireAffected(res, fmt.Sprintf("hierarchy %q", h.ID)); err != nil {
		return err
	}
	return r.writeLinks(ctx, h)
}

func (r *SQLiteHierarchyRepo) writeLinks(ctx context.Context, h *domain.Hierarchy) error {
	for _, kind := range domain.EntityKinds {
		if err := replaceLinks(ctx, r.db, hierarchyLinkTable(kind), "hierarchy_id", "entity_id", h.ID, h.LinkIDs(kind)); err != nil {
			return wrapRefViolation(err)
		}
	}
	if err := replaceLinks(ctx, r.db, "hierarchy_allowed_departments", "hierarchy_id", "department_id", h.ID, h.AllowedDepartmentIDs); err != nil {
		return wrapRefViolation(err)
	}
	return nil
}

func (r *SQLiteHierarchyRepo) GetByID(ctx context.Context, id string) (*domain.Hierarchy, error) {
	h, err := scanHierarchy(r.db.QueryRowContext(ctx, hierarchyColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hierarchy %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return h, r.loadLinks(ctx, h)
}

func (r *SQLiteHierarchyRepo) FindByName(ctx context.Context, name string) (*domain.Hierarchy, error) {
	h, err := scanHierarchy(r.db.QueryRowContext(ctx,
		hierarchyColumns+` WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hierarchy %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return h, r.loadLinks(ctx, h)
}

func (r *SQLiteHierarchyRepo) List(ctx context.Context, includeInactive bool) ([]*domain.Hierarchy, error) {
	query := hierarchyColumns + ` WHERE active = 1 ORDER BY name, created_at, rowid`
	if includeInactive {
		query = hierarchyColumns + ` ORDER BY name, created_at, rowid`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing hierarchies: %w", err)
	}
	var out []*domain.Hierarchy
	for rows.Next() {
		h, err := scanHierarchy(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating hierarchies: %w", err)
	}
	rows.Close()

	// Links are loaded after the cursor is closed; a single-connection
	// database cannot serve a second query while rows are open.
	for _, h := range out {
		if err := r.loadLinks(ctx, h); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteHierarchyRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hierarchies SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating hierarchy active flag: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("hierarchy %q", id))
}

func (r *SQLiteHierarchyRepo) loadLinks(ctx context.Context, h *domain.Hierarchy) error {
	h.Links = make(map[domain.EntityKind][]string, len(domain.EntityKinds))
	for _, kind := range domain.EntityKinds {
		ids, err := loadLinks(ctx, r.db, hierarchyLinkTable(kind), "hierarchy_id", "entity_id", h.ID)
		if err != nil {
			return err
		}
		h.SetLinks(kind, ids)
	}
	ids, err := loadLinks(ctx, r.db, "hierarchy_allowed_departments", "hierarchy_id", "department_id", h.ID)
	if err != nil {
		return err
	}
	h.AllowedDepartmentIDs = ids
	return nil
}

func scanHierarchy(row rowScanner) (*domain.Hierarchy, error) {
	var h domain.Hierarchy
	var deptID, projectID sql.NullString
	var active int
	var createdAt, updatedAt string
	if err := row.Scan(&h.ID, &h.Name, &deptID, &projectID, &h.Notes, &active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning hierarchy: %w", err)
	}
	h.DepartmentID = stringPtr(deptID)
	h.ProjectID = stringPtr(projectID)
	h.Active = intToBool(active)
	var err error
	if h.CreatedAt, h.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// wrapRefViolation tags a write that pointed at a missing row.
func wrapRefViolation(err error) error {
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w (%v)", domain.ErrUnknownReference, err)
	}
	return err
}

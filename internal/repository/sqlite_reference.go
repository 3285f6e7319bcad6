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

// SQLiteReferenceRepo implements ReferenceRepo over the workflow_* tables.
type SQLiteReferenceRepo struct {
	db db.DBTX
}

func NewSQLiteReferenceRepo(conn db.DBTX) *SQLiteReferenceRepo {
	return &SQLiteReferenceRepo{db: conn}
}

func refTable(kind domain.EntityKind) (string, error) {
	switch kind {
	case domain.KindDomain:
		return "workflow_domains", nil
	case domain.KindProcess:
		return "workflow_processes", nil
	case domain.KindSubprocess:
		return "workflow_subprocesses", nil
	case domain.KindActivity:
		return "workflow_activities", nil
	case domain.KindProcedure:
		return "workflow_procedures", nil
	case domain.KindDeliverable:
		return "workflow_deliverables", nil
	case domain.KindTaskFormulation:
		return "workflow_task_formulations", nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidEntity, kind)
}

// programColumn is the work_programs column holding a RESTRICT reference to kind.
func programColumn(kind domain.EntityKind) string {
	switch kind {
	case domain.KindActivity:
		return "activity_id"
	case domain.KindProcedure:
		return "procedure_id"
	case domain.KindTaskFormulation:
		return "task_description_id"
	}
	return ""
}

func refSelect(kind domain.EntityKind) (string, error) {
	table, err := refTable(kind)
	if err != nil {
		return "", err
	}
	if kind == domain.KindDomain {
		return `SELECT id, ref_key, name, NULL, domain_type, created_at, updated_at FROM ` + table, nil
	}
	return `SELECT id, ref_key, name, parent_id, '', created_at, updated_at FROM ` + table, nil
}

func (r *SQLiteReferenceRepo) Create(ctx context.Context, e *domain.RefEntity) error {
	table, err := refTable(e.Kind)
	if err != nil {
		return err
	}
	base := e.Key
	if base == "" {
		base = domain.Slugify(e.Name)
	}
	key, err := r.freeKey(ctx, table, base)
	if err != nil {
		return err
	}
	e.Key = key

	if e.Kind == domain.KindDomain {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO workflow_domains (id, ref_key, name, domain_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Key, e.Name, string(e.DomainType),
			e.CreatedAt.Format(time.RFC3339), e.UpdatedAt.Format(time.RFC3339),
		)
	} else {
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO `+table+` (id, ref_key, name, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Key, e.Name, nullableString(e.ParentID),
			e.CreatedAt.Format(time.RFC3339), e.UpdatedAt.Format(time.RFC3339),
		)
	}
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: parent %q of %s does not exist", domain.ErrInvalidEntity, domain.StrValue(e.ParentID), e.Kind)
		}
		return fmt.Errorf("inserting %s: %w", e.Kind, err)
	}
	return nil
}

func (r *SQLiteReferenceRepo) freeKey(ctx context.Context, table, base string) (string, error) {
	key := base
	for n := 2; ; n++ {
		var count int
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE ref_key = ?`, key).Scan(&count)
		if err != nil {
			return "", fmt.Errorf("checking key %q: %w", key, err)
		}
		if count == 0 {
			return key, nil
		}
		key = fmt.Sprintf("%s-%d", base, n)
	}
}

func (r *SQLiteReferenceRepo) GetByID(ctx context.Context, kind domain.EntityKind, id string) (*domain.RefEntity, error) {
	return r.getOne(ctx, kind, ` WHERE id = ?`, id)
}

func (r *SQLiteReferenceRepo) GetByKey(ctx context.Context, kind domain.EntityKind, key string) (*domain.RefEntity, error) {
	return r.getOne(ctx, kind, ` WHERE ref_key = ?`, key)
}

func (r *SQLiteReferenceRepo) FindByName(ctx context.Context, kind domain.EntityKind, name string) (*domain.RefEntity, error) {
	return r.getOne(ctx, kind, ` WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name)
}

func (r *SQLiteReferenceRepo) getOne(ctx context.Context, kind domain.EntityKind, where string, arg string) (*domain.RefEntity, error) {
	query, err := refSelect(kind)
	if err != nil {
		return nil, err
	}
	e, err := scanRef(kind, r.db.QueryRowContext(ctx, query+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", kind, arg, domain.ErrNotFound)
	}
	return e, err
}

func (r *SQLiteReferenceRepo) List(ctx context.Context, kind domain.EntityKind) ([]*domain.RefEntity, error) {
	query, err := refSelect(kind)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, kind, query+` ORDER BY name, created_at, rowid`)
}

func (r *SQLiteReferenceRepo) ListChildren(ctx context.Context, kind domain.EntityKind, parentID string) ([]*domain.RefEntity, error) {
	if kind == domain.KindDomain {
		return nil, nil
	}
	query, err := refSelect(kind)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, kind, query+` WHERE parent_id = ? ORDER BY name, created_at, rowid`, parentID)
}

func (r *SQLiteReferenceRepo) list(ctx context.Context, kind domain.EntityKind, query string, args ...any) ([]*domain.RefEntity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	defer rows.Close()

	var out []*domain.RefEntity
	for rows.Next() {
		e, err := scanRef(kind, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", kind, err)
	}
	return out, nil
}

// Update writes name, parent and domain type. The key never changes.
func (r *SQLiteReferenceRepo) Update(ctx context.Context, e *domain.RefEntity) error {
	table, err := refTable(e.Kind)
	if err != nil {
		return err
	}
	var res sql.Result
	if e.Kind == domain.KindDomain {
		res, err = r.db.ExecContext(ctx,
			`UPDATE workflow_domains SET name = ?, domain_type = ?, updated_at = ? WHERE id = ?`,
			e.Name, string(e.DomainType), e.UpdatedAt.Format(time.RFC3339), e.ID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE `+table+` SET name = ?, parent_id = ?, updated_at = ? WHERE id = ?`,
			e.Name, nullableString(e.ParentID), e.UpdatedAt.Format(time.RFC3339), e.ID)
	}
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: parent %q of %s does not exist", domain.ErrInvalidEntity, domain.StrValue(e.ParentID), e.Kind)
		}
		return fmt.Errorf("updating %s: %w", e.Kind, err)
	}
	return requireAffected(res, fmt.Sprintf("%s %q", e.Kind, e.ID))
}

func (r *SQLiteReferenceRepo) CountDependents(ctx context.Context, kind domain.EntityKind, id string) (int, error) {
	total := 0
	for _, child := range kind.Children() {
		table, err := refTable(child)
		if err != nil {
			return 0, err
		}
		var n int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE parent_id = ?`, id).Scan(&n); err != nil {
			return 0, fmt.Errorf("counting %s children: %w", child, err)
		}
		total += n
	}
	if col := programColumn(kind); col != "" {
		var n int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_programs WHERE `+col+` = ?`, id).Scan(&n); err != nil {
			return 0, fmt.Errorf("counting work programs: %w", err)
		}
		total += n
	}
	return total, nil
}

// Delete removes a childless entity. Any remaining reference surfaces as
// domain.ErrDeleteRestricted and nothing is removed.
func (r *SQLiteReferenceRepo) Delete(ctx context.Context, kind domain.EntityKind, id string) error {
	table, err := refTable(kind)
	if err != nil {
		return err
	}
	n, err := r.CountDependents(ctx, kind, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%s %q has %d dependent records: %w", kind, id, n, domain.ErrDeleteRestricted)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s %q: %w", kind, id, domain.ErrDeleteRestricted)
		}
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	return requireAffected(res, fmt.Sprintf("%s %q", kind, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRef(kind domain.EntityKind, row rowScanner) (*domain.RefEntity, error) {
	var e domain.RefEntity
	var parentID sql.NullString
	var domainType, createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.Key, &e.Name, &parentID, &domainType, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning %s: %w", kind, err)
	}
	e.Kind = kind
	e.ParentID = stringPtr(parentID)
	e.DomainType = domain.ScopeType(domainType)

	var err error
	if e.CreatedAt, e.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

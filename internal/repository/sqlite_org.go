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

// SQLiteDepartmentRepo implements DepartmentRepo.
type SQLiteDepartmentRepo struct {
	db db.DBTX
}

func NewSQLiteDepartmentRepo(conn db.DBTX) *SQLiteDepartmentRepo {
	return &SQLiteDepartmentRepo{db: conn}
}

const departmentColumns = `SELECT id, name, dpt_type, created_at FROM departments`

func (r *SQLiteDepartmentRepo) Create(ctx context.Context, d *domain.Department) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO departments (id, name, dpt_type, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, string(d.Type), d.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting department: %w", err)
	}
	return nil
}

func (r *SQLiteDepartmentRepo) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx, departmentColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
	}
	return d, err
}

func (r *SQLiteDepartmentRepo) FindByName(ctx context.Context, name string) (*domain.Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx,
		departmentColumns+` WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("department %q: %w", name, domain.ErrNotFound)
	}
	return d, err
}

func (r *SQLiteDepartmentRepo) List(ctx context.Context) ([]*domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, departmentColumns+` ORDER BY name, created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating departments: %w", err)
	}
	return out, nil
}

// ListByType returns departments of type t in creation order.
func (r *SQLiteDepartmentRepo) ListByType(ctx context.Context, t domain.ScopeType) ([]domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, departmentColumns+` WHERE dpt_type = ? ORDER BY created_at, rowid`, string(t))
	if err != nil {
		return nil, fmt.Errorf("listing departments by type: %w", err)
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating departments: %w", err)
	}
	return out, nil
}

func scanDepartment(row rowScanner) (*domain.Department, error) {
	var d domain.Department
	var typ, createdAt string
	if err := row.Scan(&d.ID, &d.Name, &typ, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning department: %w", err)
	}
	d.Type = domain.ScopeType(typ)
	var err error
	if d.CreatedAt, _, err = parseTimestamps(createdAt, ""); err != nil {
		return nil, err
	}
	return &d, nil
}

// SQLiteEmployeeRepo implements EmployeeRepo.
type SQLiteEmployeeRepo struct {
	db db.DBTX
}

func NewSQLiteEmployeeRepo(conn db.DBTX) *SQLiteEmployeeRepo {
	return &SQLiteEmployeeRepo{db: conn}
}

const employeeColumns = `SELECT id, name, department_id, created_at FROM employees`

func (r *SQLiteEmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, department_id, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, nullableString(e.DepartmentID), e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: department %q does not exist", domain.ErrInvalidEntity, domain.StrValue(e.DepartmentID))
		}
		return fmt.Errorf("inserting employee: %w", err)
	}
	return nil
}

func (r *SQLiteEmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, employeeColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %q: %w", id, domain.ErrNotFound)
	}
	return e, err
}

func (r *SQLiteEmployeeRepo) FindByName(ctx context.Context, name string) (*domain.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx,
		employeeColumns+` WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %q: %w", name, domain.ErrNotFound)
	}
	return e, err
}

func (r *SQLiteEmployeeRepo) List(ctx context.Context) ([]*domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, employeeColumns+` ORDER BY name, created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var out []*domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employees: %w", err)
	}
	return out, nil
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	var deptID sql.NullString
	var createdAt string
	if err := row.Scan(&e.ID, &e.Name, &deptID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning employee: %w", err)
	}
	e.DepartmentID = stringPtr(deptID)
	var err error
	if e.CreatedAt, _, err = parseTimestamps(createdAt, ""); err != nil {
		return nil, err
	}
	return &e, nil
}

// SQLiteProjectRepo implements ProjectRepo.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `SELECT id, name, project_type, created_at FROM projects`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, project_type, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Type), p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, projectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	return p, err
}

func (r *SQLiteProjectRepo) FindByName(ctx context.Context, name string) (*domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		projectColumns+` WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", name, domain.ErrNotFound)
	}
	return p, err
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, projectColumns+` ORDER BY name, created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var typ, createdAt string
	if err := row.Scan(&p.ID, &p.Name, &typ, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.Type = domain.ScopeType(typ)
	var err error
	if p.CreatedAt, _, err = parseTimestamps(createdAt, ""); err != nil {
		return nil, err
	}
	return &p, nil
}

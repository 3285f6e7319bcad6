package repository

import (
	"context"

	"github.com/alexanderramin/workprog/internal/domain"
)

// ReferenceRepo stores the seven workflow hierarchy tables. Every method
// takes the kind explicitly; the kind selects a fixed table.
type ReferenceRepo interface {
	// Create inserts e. A key already taken within the kind gets a numeric
	// suffix and e.Key is updated to the stored value.
	Create(ctx context.Context, e *domain.RefEntity) error
	GetByID(ctx context.Context, kind domain.EntityKind, id string) (*domain.RefEntity, error)
	GetByKey(ctx context.Context, kind domain.EntityKind, key string) (*domain.RefEntity, error)
	// FindByName returns the earliest created entity whose name equals name.
	FindByName(ctx context.Context, kind domain.EntityKind, name string) (*domain.RefEntity, error)
	List(ctx context.Context, kind domain.EntityKind) ([]*domain.RefEntity, error)
	ListChildren(ctx context.Context, kind domain.EntityKind, parentID string) ([]*domain.RefEntity, error)
	Update(ctx context.Context, e *domain.RefEntity) error
	// CountDependents counts child rows and work programs referencing id.
	CountDependents(ctx context.Context, kind domain.EntityKind, id string) (int, error)
	Delete(ctx context.Context, kind domain.EntityKind, id string) error
}

type DepartmentRepo interface {
	Create(ctx context.Context, d *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	FindByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
	ListByType(ctx context.Context, t domain.ScopeType) ([]domain.Department, error)
}

type EmployeeRepo interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	FindByName(ctx context.Context, name string) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	FindByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
}

type HierarchyRepo interface {
	Create(ctx context.Context, h *domain.Hierarchy) error
	GetByID(ctx context.Context, id string) (*domain.Hierarchy, error)
	FindByName(ctx context.Context, name string) (*domain.Hierarchy, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Hierarchy, error)
	// Update overwrites every column and replaces every link set.
	Update(ctx context.Context, h *domain.Hierarchy) error
	SetActive(ctx context.Context, id string, active bool) error
}

// WorkProgramFilter narrows List. Empty fields match everything.
type WorkProgramFilter struct {
	Status       domain.ProgramStatus
	DepartmentID string
}

type WorkProgramRepo interface {
	Create(ctx context.Context, w *domain.WorkProgram) error
	GetByID(ctx context.Context, id string) (*domain.WorkProgram, error)
	FindByName(ctx context.Context, name string) (*domain.WorkProgram, error)
	List(ctx context.Context, filter WorkProgramFilter) ([]*domain.WorkProgram, error)
	Update(ctx context.Context, w *domain.WorkProgram) error
	Delete(ctx context.Context, id string) error
}

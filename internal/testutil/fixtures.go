package testutil

import (
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/google/uuid"
)

func fixtureNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Reference entity options
type RefOption func(*domain.RefEntity)

func WithParent(id string) RefOption {
	return func(e *domain.RefEntity) {
		e.ParentID = &id
	}
}

func WithDomainType(t domain.ScopeType) RefOption {
	return func(e *domain.RefEntity) {
		e.DomainType = t
	}
}

func WithKey(key string) RefOption {
	return func(e *domain.RefEntity) {
		e.Key = key
	}
}

func NewTestRef(kind domain.EntityKind, name string, opts ...RefOption) *domain.RefEntity {
	e := domain.NewRefEntity(kind, name, fixtureNow())
	e.ID = uuid.New().String()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func NewTestActivity(name string, opts ...RefOption) *domain.RefEntity {
	return NewTestRef(domain.KindActivity, name, opts...)
}

func NewTestProcedure(activityID, name string, opts ...RefOption) *domain.RefEntity {
	return NewTestRef(domain.KindProcedure, name, append([]RefOption{WithParent(activityID)}, opts...)...)
}

func NewTestDeliverable(activityID, name string, opts ...RefOption) *domain.RefEntity {
	return NewTestRef(domain.KindDeliverable, name, append([]RefOption{WithParent(activityID)}, opts...)...)
}

func NewTestTaskFormulation(procedureID, name string, opts ...RefOption) *domain.RefEntity {
	return NewTestRef(domain.KindTaskFormulation, name, append([]RefOption{WithParent(procedureID)}, opts...)...)
}

func NewTestDepartment(name string, t domain.ScopeType) *domain.Department {
	return &domain.Department{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      t,
		CreatedAt: fixtureNow(),
	}
}

func NewTestEmployee(name string, departmentID *string) *domain.Employee {
	return &domain.Employee{
		ID:           uuid.New().String(),
		Name:         name,
		DepartmentID: departmentID,
		CreatedAt:    fixtureNow(),
	}
}

func NewTestProject(name string, t domain.ScopeType) *domain.Project {
	return &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      t,
		CreatedAt: fixtureNow(),
	}
}

// Work program options
type ProgramOption func(*domain.WorkProgram)

func WithActivity(id string) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.ActivityID = &id
	}
}

func WithProcedure(id string) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.ProcedureID = &id
	}
}

func WithTaskDescription(id string) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.TaskDescriptionID = &id
	}
}

func WithDepartment(id string) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.DepartmentID = &id
	}
}

func WithResponsible(id string) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.ResponsibleID = &id
	}
}

func WithDeliverables(ids ...string) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.DeliverableIDs = ids
	}
}

func WithSupports(ids ...string) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.SupportIDs = ids
	}
}

func WithCompletion(pct float64) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.CompletionPct = pct
	}
}

func WithProgramStatus(s domain.ProgramStatus) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.Status = s
	}
}

func WithAssignmentDate(d time.Time) ProgramOption {
	return func(w *domain.WorkProgram) {
		w.AssignmentDate = &d
	}
}

func NewTestWorkProgram(name string, opts ...ProgramOption) *domain.WorkProgram {
	w := domain.NewWorkProgram(name, "test-user", fixtureNow())
	w.ID = uuid.New().String()
	for _, opt := range opts {
		opt(w)
	}
	return w
}

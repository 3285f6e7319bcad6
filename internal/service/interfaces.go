package service

import (
	"context"
	"net/url"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/alexanderramin/workprog/internal/selection"
)

// RefNode is one entity of the reference tree with the entities below it.
type RefNode struct {
	Entity   *domain.RefEntity
	Children []*RefNode
}

type ReferenceService interface {
	Create(ctx context.Context, e *domain.RefEntity) error
	Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.RefEntity, error)
	GetByKey(ctx context.Context, kind domain.EntityKind, key string) (*domain.RefEntity, error)
	// Resolve looks ref up as an id, then a key, then an exact name.
	Resolve(ctx context.Context, kind domain.EntityKind, ref string) (*domain.RefEntity, error)
	List(ctx context.Context, kind domain.EntityKind) ([]*domain.RefEntity, error)
	ListChildren(ctx context.Context, kind domain.EntityKind, parentID string) ([]*domain.RefEntity, error)
	Rename(ctx context.Context, kind domain.EntityKind, id, name string) (*domain.RefEntity, error)
	Delete(ctx context.Context, kind domain.EntityKind, id string) error
	// Tree returns every domain with its descendants, followed by entities
	// whose parent chain does not reach a domain.
	Tree(ctx context.Context) ([]*RefNode, error)
}

type OrgService interface {
	CreateDepartment(ctx context.Context, d *domain.Department) error
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
	ResolveDepartment(ctx context.Context, ref string) (*domain.Department, error)
	CreateEmployee(ctx context.Context, e *domain.Employee) error
	ListEmployees(ctx context.Context) ([]*domain.Employee, error)
	CreateProject(ctx context.Context, p *domain.Project) error
	ListProjects(ctx context.Context) ([]*domain.Project, error)
	ResolveProject(ctx context.Context, ref string) (*domain.Project, error)
}

// Inconsistency reports a linked entity whose parent is not linked at the
// level above within the same hierarchy aggregate.
type Inconsistency struct {
	Kind       domain.EntityKind
	EntityID   string
	EntityName string
	ParentKind domain.EntityKind
	ParentID   string
}

type HierarchyService interface {
	Get(ctx context.Context, id string) (*domain.Hierarchy, error)
	// Find looks ref up as an id, then as an exact name.
	Find(ctx context.Context, ref string) (*domain.Hierarchy, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Hierarchy, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	// SyncProject sets the project of a hierarchy and recomputes its allowed
	// departments from the project type. A nil projectID clears the project.
	SyncProject(ctx context.Context, id string, projectID *string) (*domain.Hierarchy, error)
	Check(ctx context.Context, id string) ([]Inconsistency, error)
}

// WorkProgramView is a work program with the values derived for display.
type WorkProgramView struct {
	Program    *domain.WorkProgram
	Department *domain.Department

	// IsExternalDepartment gates the extension fields.
	IsExternalDepartment bool
}

type WorkProgramService interface {
	Create(ctx context.Context, w *domain.WorkProgram) error
	Update(ctx context.Context, w *domain.WorkProgram) error
	Get(ctx context.Context, id string) (*domain.WorkProgram, error)
	List(ctx context.Context, filter repository.WorkProgramFilter) ([]*domain.WorkProgram, error)
	Delete(ctx context.Context, id string) error
	View(ctx context.Context, id string) (*WorkProgramView, error)
	// Submit creates a work program from form values. Nothing is stored
	// when any value fails to convert or validate.
	Submit(ctx context.Context, values url.Values) (*domain.WorkProgram, error)
}

// ImportOutcome tells what an import row did.
type ImportOutcome string

const (
	OutcomeCreated ImportOutcome = "created"
	OutcomeUpdated ImportOutcome = "updated"
	OutcomeFailed  ImportOutcome = "failed"
)

// Unresolved is a name in a work program row that matched no record.
type Unresolved struct {
	Column      string
	Name        string
	Suggestions []string
}

// RowResult is the outcome of importing one row. For a failed row ID is the
// placeholder record and Error holds the cause.
type RowResult struct {
	Row        int
	ID         string
	Name       string
	Outcome    ImportOutcome
	Error      string
	CreatedRef int
	Unresolved []Unresolved
}

// ImportResult aggregates the rows of a batch.
type ImportResult struct {
	Rows    []RowResult
	Created int
	Updated int
	Failed  int
}

// ImportTarget selects which importer a file is fed to.
type ImportTarget string

const (
	TargetHierarchy   ImportTarget = "hierarchy"
	TargetWorkProgram ImportTarget = "work_program"
)

type ImportService interface {
	// ImportHierarchy upserts one hierarchy aggregate by name. A failing row
	// leaves an inactive placeholder and is reported, not returned as error.
	ImportHierarchy(ctx context.Context, row importer.Row) (*RowResult, error)
	// ImportWorkProgram upserts one work program by name. Names that match no
	// record are left unset and reported in the result.
	ImportWorkProgram(ctx context.Context, row importer.Row) (*RowResult, error)
	ImportHierarchyRows(ctx context.Context, rows []importer.Row) (*ImportResult, error)
	ImportWorkProgramRows(ctx context.Context, rows []importer.Row) (*ImportResult, error)
	ImportFile(ctx context.Context, target ImportTarget, path string, opts importer.LoadOptions) (*ImportResult, error)
}

// FormMetadata is everything an editor needs to render the work program form.
type FormMetadata struct {
	Employees        []selection.Option `json:"employees"`
	Projects         []selection.Option `json:"projects"`
	Departments      []selection.Option `json:"departments"`
	Activities       []selection.Option `json:"activities"`
	Procedures       []selection.Option `json:"procedures"`
	TaskDescriptions []selection.Option `json:"task_descriptions"`
	Deliverables     []selection.Option `json:"deliverables"`
	Enums            selection.Enums    `json:"enums"`
	Months           []selection.Option `json:"months"`
	Weeks            []selection.Option `json:"weeks"`
	DefaultMonth     string             `json:"default_month"`
	DefaultWeek      string             `json:"default_week"`
}

// ChangeResult is a cascade outcome with the choices left for every
// constrained field.
type ChangeResult struct {
	selection.Outcome
	Choices map[selection.Field][]selection.Option `json:"choices"`
}

type SelectionService interface {
	// Choices lists the options c allows. A None constraint yields none.
	Choices(ctx context.Context, c selection.Constraint) ([]selection.Option, error)
	OnChange(ctx context.Context, form selection.Form, field selection.Field, value string) (*ChangeResult, error)
	FormMetadata(ctx context.Context, now time.Time) (*FormMetadata, error)
}

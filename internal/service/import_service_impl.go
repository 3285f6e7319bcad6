package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/google/uuid"
)

type importService struct {
	ownerID  string
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewImportService returns the row importers. Every row runs in its own
// transaction; ownerID is recorded on work programs the importer creates.
func NewImportService(ownerID string, uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{ownerID: ownerID, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// ParseImportTarget accepts "hierarchy" or "work_program" (also "program",
// "work-program").
func ParseImportTarget(s string) (ImportTarget, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "hierarchy", "hierarchies":
		return TargetHierarchy, nil
	case "work_program", "work_programs", "program", "programs":
		return TargetWorkProgram, nil
	}
	return "", fmt.Errorf("unknown import target %q (want hierarchy or work_program)", s)
}

func (s *importService) observeRow(ctx context.Context, name string, startedAt time.Time, res *RowResult, rowErr, err error) {
	fields := map[string]any{"import": name}
	if res != nil {
		fields["name"] = res.Name
		fields["outcome"] = string(res.Outcome)
		if res.CreatedRef > 0 {
			fields["created_refs"] = res.CreatedRef
		}
		if len(res.Unresolved) > 0 {
			fields["unresolved"] = len(res.Unresolved)
		}
	}
	if err == nil {
		err = rowErr
	}
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "import-" + name + "-row",
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *importService) ImportHierarchy(ctx context.Context, row importer.Row) (res *RowResult, err error) {
	startedAt := time.Now()
	parsed := importer.ParseHierarchyRow(row)
	res = &RowResult{Name: parsed.Name}
	var rowErr error
	defer func() { s.observeRow(ctx, "hierarchy", startedAt, res, rowErr, err) }()

	now := time.Now().UTC()
	rowErr = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		refs := repository.NewSQLiteReferenceRepo(tx)
		hierarchies := repository.NewSQLiteHierarchyRepo(tx)

		links := make(map[domain.EntityKind][]string, len(domain.EntityKinds))
		for _, kind := range domain.EntityKinds {
			ids, created, err := findOrCreateRefs(ctx, refs, kind, parsed.Names[kind], now)
			if err != nil {
				return fmt.Errorf("%s: %w", importer.HierarchyColumn(kind), err)
			}
			links[kind] = ids
			res.CreatedRef += created
		}

		h, err := hierarchies.FindByName(ctx, parsed.Name)
		isNew := errors.Is(err, domain.ErrNotFound)
		switch {
		case isNew:
			h = domain.NewHierarchy(parsed.Name, now)
			h.ID = uuid.New().String()
		case err != nil:
			return err
		default:
			h.UpdatedAt = now
		}

		for _, kind := range domain.EntityKinds {
			h.SetLinks(kind, links[kind])
		}
		if parsed.Notes != nil {
			h.Notes = *parsed.Notes
		}
		h.Active = parsed.Active
		if err := h.Validate(); err != nil {
			return err
		}

		if isNew {
			if err := hierarchies.Create(ctx, h); err != nil {
				return err
			}
			res.Outcome = OutcomeCreated
		} else {
			if err := hierarchies.Update(ctx, h); err != nil {
				return err
			}
			res.Outcome = OutcomeUpdated
		}
		res.ID = h.ID
		return nil
	})
	if rowErr == nil {
		return res, nil
	}

	res.Outcome = OutcomeFailed
	res.Error = rowErr.Error()
	res.CreatedRef = 0
	res.ID = ""

	placeholder := domain.NewHierarchy(domain.ImportErrorName(parsed.Name), now)
	placeholder.ID = uuid.New().String()
	placeholder.Active = false
	placeholder.Notes = fmt.Sprintf("Failed to import: %s. Error: %v", row, rowErr)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteHierarchyRepo(tx).Create(ctx, placeholder)
	})
	if err != nil {
		return res, fmt.Errorf("recording failed hierarchy row %q: %w", parsed.Name, err)
	}
	res.ID = placeholder.ID
	return res, nil
}

// findOrCreateRefs resolves names to ids, creating a bare entity for every
// name that matches nothing. Repeated names resolve to the same id.
func findOrCreateRefs(ctx context.Context, refs repository.ReferenceRepo, kind domain.EntityKind, names []string, now time.Time) ([]string, int, error) {
	ids := make([]string, 0, len(names))
	created := 0
	for _, name := range names {
		e, err := refs.FindByName(ctx, kind, name)
		if errors.Is(err, domain.ErrNotFound) {
			e = domain.NewRefEntity(kind, name, now)
			e.ID = uuid.New().String()
			if err := refs.Create(ctx, e); err != nil {
				return nil, 0, fmt.Errorf("creating %s %q: %w", kind, name, err)
			}
			created++
		} else if err != nil {
			return nil, 0, err
		}
		ids = append(ids, e.ID)
	}
	return domain.UniqueIDs(ids), created, nil
}

func (s *importService) ImportWorkProgram(ctx context.Context, row importer.Row) (res *RowResult, err error) {
	startedAt := time.Now()
	name := importer.ProgramName(row)
	res = &RowResult{Name: name}
	var rowErr error
	defer func() { s.observeRow(ctx, "work_program", startedAt, res, rowErr, err) }()

	now := time.Now().UTC()
	rowErr = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		parsed, err := importer.ParseWorkProgramRow(row)
		if err != nil {
			return err
		}

		w := domain.NewWorkProgram(parsed.Name, s.ownerID, now)
		w.Month = parsed.Month
		w.WeekOf = parsed.WeekOf
		w.InputsNeeded = parsed.InputsNeeded
		w.Priority = parsed.Priority
		w.Complexity = parsed.Complexity
		w.Status = parsed.Status
		w.Satisfaction = parsed.Satisfaction
		w.AssignmentDate = parsed.AssignmentDate
		w.InitialDeadline = parsed.InitialDeadline
		w.ActualDeadline = parsed.ActualDeadline
		w.DurationHours = parsed.DurationHours
		w.PostponeCount = parsed.PostponeCount
		w.CompletionPct = parsed.CompletionPct
		w.Comments = parsed.Comments
		w.Field1 = parsed.Field1
		w.Field2 = parsed.Field2

		r := newRowResolver(tx)
		if err := r.resolveProgramRefs(ctx, parsed, w); err != nil {
			return err
		}
		res.Unresolved = r.unresolved

		programs := repository.NewSQLiteWorkProgramRepo(tx)
		existing, err := programs.FindByName(ctx, parsed.Name)
		isNew := errors.Is(err, domain.ErrNotFound)
		switch {
		case isNew:
			w.ID = uuid.New().String()
		case err != nil:
			return err
		default:
			w.ID = existing.ID
			w.OwnerID = existing.OwnerID
			w.CreatedAt = existing.CreatedAt
		}
		if err := w.Validate(); err != nil {
			return err
		}

		if isNew {
			if err := programs.Create(ctx, w); err != nil {
				return err
			}
			res.Outcome = OutcomeCreated
		} else {
			if err := programs.Update(ctx, w); err != nil {
				return err
			}
			res.Outcome = OutcomeUpdated
		}
		res.ID = w.ID
		return nil
	})
	if rowErr == nil {
		return res, nil
	}

	res.Outcome = OutcomeFailed
	res.Error = rowErr.Error()
	res.ID = ""

	placeholder := domain.NewWorkProgram(name, s.ownerID, now)
	placeholder.ID = uuid.New().String()
	placeholder.ImportFailure(row.String(), rowErr)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteWorkProgramRepo(tx).Create(ctx, placeholder)
	})
	if err != nil {
		return res, fmt.Errorf("recording failed work program row %q: %w", name, err)
	}
	res.ID = placeholder.ID
	return res, nil
}

// rowResolver looks names up without creating anything and collects the
// names that matched no record.
type rowResolver struct {
	refs        repository.ReferenceRepo
	departments repository.DepartmentRepo
	employees   repository.EmployeeRepo
	projects    repository.ProjectRepo
	unresolved  []Unresolved
}

func newRowResolver(tx db.DBTX) *rowResolver {
	return &rowResolver{
		refs:        repository.NewSQLiteReferenceRepo(tx),
		departments: repository.NewSQLiteDepartmentRepo(tx),
		employees:   repository.NewSQLiteEmployeeRepo(tx),
		projects:    repository.NewSQLiteProjectRepo(tx),
	}
}

func (r *rowResolver) resolveProgramRefs(ctx context.Context, p *importer.WorkProgramRow, w *domain.WorkProgram) error {
	var err error
	if w.DepartmentID, err = r.lookup(ctx, importer.ColDepartment, p.Department, r.departmentID, r.departmentNames); err != nil {
		return err
	}
	if w.ProjectID, err = r.lookup(ctx, importer.ColProject, p.Project, r.projectID, r.projectNames); err != nil {
		return err
	}
	if w.ActivityID, err = r.lookupRef(ctx, importer.ColActivity, domain.KindActivity, p.Activity); err != nil {
		return err
	}
	if w.ProcedureID, err = r.lookupRef(ctx, importer.ColProcedure, domain.KindProcedure, p.Procedure); err != nil {
		return err
	}
	if w.TaskDescriptionID, err = r.lookupRef(ctx, importer.ColTaskDescription, domain.KindTaskFormulation, p.TaskDescription); err != nil {
		return err
	}
	if w.ResponsibleID, err = r.lookup(ctx, importer.ColResponsible, p.Responsible, r.employeeID, r.employeeNames); err != nil {
		return err
	}
	for _, name := range p.Deliverables {
		id, err := r.lookupRef(ctx, importer.ColDeliverables, domain.KindDeliverable, name)
		if err != nil {
			return err
		}
		if id != nil {
			w.DeliverableIDs = append(w.DeliverableIDs, *id)
		}
	}
	for _, name := range p.Supports {
		id, err := r.lookup(ctx, importer.ColSupport, name, r.employeeID, r.employeeNames)
		if err != nil {
			return err
		}
		if id != nil {
			w.SupportIDs = append(w.SupportIDs, *id)
		}
	}
	w.DeliverableIDs = domain.UniqueIDs(w.DeliverableIDs)
	w.SupportIDs = domain.UniqueIDs(w.SupportIDs)
	return nil
}

// lookup resolves name with find. A miss leaves the reference unset and
// records the name with suggestions drawn from names.
func (r *rowResolver) lookup(
	ctx context.Context,
	column, name string,
	find func(context.Context, string) (string, error),
	names func(context.Context) ([]string, error),
) (*string, error) {
	if name == "" {
		return nil, nil
	}
	id, err := find(ctx, name)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	candidates, err := names(ctx)
	if err != nil {
		return nil, err
	}
	r.unresolved = append(r.unresolved, Unresolved{
		Column:      column,
		Name:        name,
		Suggestions: suggestNames(name, candidates),
	})
	return nil, nil
}

func (r *rowResolver) lookupRef(ctx context.Context, column string, kind domain.EntityKind, name string) (*string, error) {
	find := func(ctx context.Context, name string) (string, error) {
		e, err := r.refs.FindByName(ctx, kind, name)
		if err != nil {
			return "", err
		}
		return e.ID, nil
	}
	names := func(ctx context.Context) ([]string, error) {
		entities, err := r.refs.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(entities))
		for _, e := range entities {
			out = append(out, e.Name)
		}
		return out, nil
	}
	return r.lookup(ctx, column, name, find, names)
}

func (r *rowResolver) departmentID(ctx context.Context, name string) (string, error) {
	d, err := r.departments.FindByName(ctx, name)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

func (r *rowResolver) departmentNames(ctx context.Context) ([]string, error) {
	depts, err := r.departments.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(depts))
	for _, d := range depts {
		out = append(out, d.Name)
	}
	return out, nil
}

func (r *rowResolver) employeeID(ctx context.Context, name string) (string, error) {
	e, err := r.employees.FindByName(ctx, name)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

func (r *rowResolver) employeeNames(ctx context.Context) ([]string, error) {
	emps, err := r.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(emps))
	for _, e := range emps {
		out = append(out, e.Name)
	}
	return out, nil
}

func (r *rowResolver) projectID(ctx context.Context, name string) (string, error) {
	p, err := r.projects.FindByName(ctx, name)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (r *rowResolver) projectNames(ctx context.Context) ([]string, error) {
	projects, err := r.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Name)
	}
	return out, nil
}

func (s *importService) ImportHierarchyRows(ctx context.Context, rows []importer.Row) (*ImportResult, error) {
	return s.importRows(ctx, rows, s.ImportHierarchy)
}

func (s *importService) ImportWorkProgramRows(ctx context.Context, rows []importer.Row) (*ImportResult, error) {
	return s.importRows(ctx, rows, s.ImportWorkProgram)
}

// importRows feeds rows one at a time. A failed row is counted and the batch
// goes on; only a storage failure while recording it stops the batch.
func (s *importService) importRows(
	ctx context.Context,
	rows []importer.Row,
	importRow func(context.Context, importer.Row) (*RowResult, error),
) (*ImportResult, error) {
	out := &ImportResult{Rows: make([]RowResult, 0, len(rows))}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := importRow(ctx, row)
		if err != nil {
			return out, fmt.Errorf("row %d: %w", i+1, err)
		}
		res.Row = i + 1
		out.Rows = append(out.Rows, *res)
		switch res.Outcome {
		case OutcomeCreated:
			out.Created++
		case OutcomeUpdated:
			out.Updated++
		case OutcomeFailed:
			out.Failed++
		}
	}
	return out, nil
}

func (s *importService) ImportFile(ctx context.Context, target ImportTarget, path string, opts importer.LoadOptions) (*ImportResult, error) {
	rows, err := importer.LoadRows(path, opts)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	switch target {
	case TargetHierarchy:
		return s.ImportHierarchyRows(ctx, rows)
	case TargetWorkProgram:
		return s.ImportWorkProgramRows(ctx, rows)
	}
	return nil, fmt.Errorf("unknown import target %q", target)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/alexanderramin/workprog/internal/selection"
)

type selectionService struct {
	refs        repository.ReferenceRepo
	departments repository.DepartmentRepo
	employees   repository.EmployeeRepo
	projects    repository.ProjectRepo
}

func NewSelectionService(
	refs repository.ReferenceRepo,
	departments repository.DepartmentRepo,
	employees repository.EmployeeRepo,
	projects repository.ProjectRepo,
) SelectionService {
	return &selectionService{refs: refs, departments: departments, employees: employees, projects: projects}
}

func (s *selectionService) Choices(ctx context.Context, c selection.Constraint) ([]selection.Option, error) {
	if c.None || c.ParentID == "" {
		return []selection.Option{}, nil
	}
	children, err := s.refs.ListChildren(ctx, c.Kind, c.ParentID)
	if err != nil {
		return nil, err
	}
	return selection.RefOptions(children, &c), nil
}

func (s *selectionService) OnChange(ctx context.Context, form selection.Form, field selection.Field, value string) (*ChangeResult, error) {
	outcome := selection.OnChange(form, field, value)
	res := &ChangeResult{
		Outcome: outcome,
		Choices: make(map[selection.Field][]selection.Option, len(outcome.Constraints)),
	}
	for _, c := range outcome.Constraints {
		opts, err := s.Choices(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("choices for %s: %w", c.Field, err)
		}
		res.Choices[c.Field] = opts
	}
	return res, nil
}

func (s *selectionService) FormMetadata(ctx context.Context, now time.Time) (*FormMetadata, error) {
	meta := &FormMetadata{
		Enums:        selection.AllEnums(),
		Months:       selection.MonthOptions(),
		Weeks:        selection.WeekOptions(now.Year()),
		DefaultMonth: selection.DefaultMonth(now),
		DefaultWeek:  selection.DefaultWeek(now),
	}

	refLists := []struct {
		kind domain.EntityKind
		dst  *[]selection.Option
	}{
		{domain.KindActivity, &meta.Activities},
		{domain.KindProcedure, &meta.Procedures},
		{domain.KindTaskFormulation, &meta.TaskDescriptions},
		{domain.KindDeliverable, &meta.Deliverables},
	}
	for _, l := range refLists {
		entities, err := s.refs.List(ctx, l.kind)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.kind, err)
		}
		*l.dst = selection.RefOptions(entities, nil)
	}

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	meta.Employees = make([]selection.Option, 0, len(employees))
	for _, e := range employees {
		meta.Employees = append(meta.Employees, selection.Option{Value: e.ID, Label: e.Name})
	}

	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	meta.Projects = make([]selection.Option, 0, len(projects))
	for _, p := range projects {
		meta.Projects = append(meta.Projects, selection.Option{Value: p.ID, Label: p.Name})
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	meta.Departments = make([]selection.Option, 0, len(departments))
	for _, d := range departments {
		meta.Departments = append(meta.Departments, selection.Option{Value: d.ID, Label: d.Name})
	}
	return meta, nil
}

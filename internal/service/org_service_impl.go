package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/google/uuid"
)

type orgService struct {
	departments repository.DepartmentRepo
	employees   repository.EmployeeRepo
	projects    repository.ProjectRepo
}

func NewOrgService(departments repository.DepartmentRepo, employees repository.EmployeeRepo, projects repository.ProjectRepo) OrgService {
	return &orgService{departments: departments, employees: employees, projects: projects}
}

func (s *orgService) CreateDepartment(ctx context.Context, d *domain.Department) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.Name = strings.TrimSpace(d.Name)
	d.CreatedAt = time.Now().UTC()
	if err := d.Validate(); err != nil {
		return err
	}
	return s.departments.Create(ctx, d)
}

func (s *orgService) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	return s.departments.List(ctx)
}

func (s *orgService) ResolveDepartment(ctx context.Context, ref string) (*domain.Department, error) {
	d, err := s.departments.GetByID(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return s.departments.FindByName(ctx, strings.TrimSpace(ref))
	}
	return d, err
}

func (s *orgService) CreateEmployee(ctx context.Context, e *domain.Employee) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Name = strings.TrimSpace(e.Name)
	e.CreatedAt = time.Now().UTC()
	if err := e.Validate(); err != nil {
		return err
	}
	return s.employees.Create(ctx, e)
}

func (s *orgService) ListEmployees(ctx context.Context) ([]*domain.Employee, error) {
	return s.employees.List(ctx)
}

func (s *orgService) CreateProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = time.Now().UTC()
	if err := p.Validate(); err != nil {
		return err
	}
	return s.projects.Create(ctx, p)
}

func (s *orgService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *orgService) ResolveProject(ctx context.Context, ref string) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return s.projects.FindByName(ctx, strings.TrimSpace(ref))
	}
	return p, err
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/alexanderramin/workprog/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testOwner = "test-user"

type testEnv struct {
	db          *sql.DB
	uow         db.UnitOfWork
	refs        repository.ReferenceRepo
	departments repository.DepartmentRepo
	employees   repository.EmployeeRepo
	projects    repository.ProjectRepo
	hierarchies repository.HierarchyRepo
	programs    repository.WorkProgramRepo
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &testEnv{
		db:          database,
		uow:         testutil.NewTestUoW(database),
		refs:        repository.NewSQLiteReferenceRepo(database),
		departments: repository.NewSQLiteDepartmentRepo(database),
		employees:   repository.NewSQLiteEmployeeRepo(database),
		projects:    repository.NewSQLiteProjectRepo(database),
		hierarchies: repository.NewSQLiteHierarchyRepo(database),
		programs:    repository.NewSQLiteWorkProgramRepo(database),
	}
}

func (e *testEnv) referenceService() ReferenceService {
	return NewReferenceService(e.refs, e.uow)
}

func (e *testEnv) hierarchyService() HierarchyService {
	return NewHierarchyService(e.hierarchies, e.refs, e.uow)
}

func (e *testEnv) workProgramService() WorkProgramService {
	return NewWorkProgramService(e.programs, e.departments, testOwner, e.uow)
}

func (e *testEnv) importService() ImportService {
	return NewImportService(testOwner, e.uow)
}

func (e *testEnv) selectionService() SelectionService {
	return NewSelectionService(e.refs, e.departments, e.employees, e.projects)
}

func (e *testEnv) addRef(t *testing.T, ref *domain.RefEntity) *domain.RefEntity {
	t.Helper()
	require.NoError(t, e.refs.Create(context.Background(), ref))
	return ref
}

func (e *testEnv) addDepartment(t *testing.T, name string, typ domain.ScopeType) *domain.Department {
	t.Helper()
	d := testutil.NewTestDepartment(name, typ)
	require.NoError(t, e.departments.Create(context.Background(), d))
	return d
}

func (e *testEnv) addEmployee(t *testing.T, name string) *domain.Employee {
	t.Helper()
	emp := testutil.NewTestEmployee(name, nil)
	require.NoError(t, e.employees.Create(context.Background(), emp))
	return emp
}

func (e *testEnv) addProject(t *testing.T, name string, typ domain.ScopeType) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name, typ)
	require.NoError(t, e.projects.Create(context.Background(), p))
	return p
}

func refNames(t *testing.T, refs repository.ReferenceRepo, kind domain.EntityKind) []string {
	t.Helper()
	entities, err := refs.List(context.Background(), kind)
	require.NoError(t, err)
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	return names
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type programFixture struct {
	activity    *domain.RefEntity
	procedure   *domain.RefEntity
	task        *domain.RefEntity
	deliverable *domain.RefEntity
	dept        *domain.Department
	ann         *domain.Employee
	bob         *domain.Employee
}

func seedProgramRefs(t *testing.T, ctx context.Context, refs *SQLiteReferenceRepo, depts *SQLiteDepartmentRepo, emps *SQLiteEmployeeRepo) programFixture {
	t.Helper()
	f := programFixture{}
	f.activity = testutil.NewTestActivity("Review")
	require.NoError(t, refs.Create(ctx, f.activity))
	f.procedure = testutil.NewTestProcedure(f.activity.ID, "Sample")
	require.NoError(t, refs.Create(ctx, f.procedure))
	f.task = testutil.NewTestTaskFormulation(f.procedure.ID, "Pick 20 invoices")
	require.NoError(t, refs.Create(ctx, f.task))
	f.deliverable = testutil.NewTestDeliverable(f.activity.ID, "Report")
	require.NoError(t, refs.Create(ctx, f.deliverable))
	f.dept = testutil.NewTestDepartment("Audit", domain.ScopeExternal)
	require.NoError(t, depts.Create(ctx, f.dept))
	f.ann = testutil.NewTestEmployee("Ann", &f.dept.ID)
	require.NoError(t, emps.Create(ctx, f.ann))
	f.bob = testutil.NewTestEmployee("Bob", nil)
	require.NoError(t, emps.Create(ctx, f.bob))
	return f
}

func TestWorkProgramRepo_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedProgramRefs(t, ctx, NewSQLiteReferenceRepo(db), NewSQLiteDepartmentRepo(db), NewSQLiteEmployeeRepo(db))
	repo := NewSQLiteWorkProgramRepo(db)

	assigned := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	w := testutil.NewTestWorkProgram("Pick 20 invoices",
		testutil.WithActivity(f.activity.ID),
		testutil.WithProcedure(f.procedure.ID),
		testutil.WithTaskDescription(f.task.ID),
		testutil.WithDepartment(f.dept.ID),
		testutil.WithResponsible(f.ann.ID),
		testutil.WithDeliverables(f.deliverable.ID),
		testutil.WithSupports(f.bob.ID, f.ann.ID),
		testutil.WithCompletion(42.5),
		testutil.WithAssignmentDate(assigned),
	)
	w.Month = "march"
	w.WeekOf = 10
	w.DurationHours = 7.5
	w.PostponeCount = 2
	w.Satisfaction = domain.SatisfactionHigh
	require.NoError(t, repo.Create(ctx, w))

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pick 20 invoices", got.Name)
	assert.Equal(t, f.activity.ID, domain.StrValue(got.ActivityID))
	assert.Equal(t, f.procedure.ID, domain.StrValue(got.ProcedureID))
	assert.Equal(t, f.task.ID, domain.StrValue(got.TaskDescriptionID))
	assert.Equal(t, f.dept.ID, domain.StrValue(got.DepartmentID))
	assert.Equal(t, f.ann.ID, domain.StrValue(got.ResponsibleID))
	assert.Nil(t, got.ProjectID)
	assert.Equal(t, []string{f.deliverable.ID}, got.DeliverableIDs)
	assert.Equal(t, []string{f.bob.ID, f.ann.ID}, got.SupportIDs)
	assert.Equal(t, 42.5, got.CompletionPct)
	assert.Equal(t, 7.5, got.DurationHours)
	assert.Equal(t, 2, got.PostponeCount)
	assert.Equal(t, "march", got.Month)
	assert.Equal(t, 10, got.WeekOf)
	assert.Equal(t, domain.SatisfactionHigh, got.Satisfaction)
	require.NotNil(t, got.AssignmentDate)
	assert.True(t, assigned.Equal(*got.AssignmentDate))
	assert.Nil(t, got.ActualDeadline)
}

func TestWorkProgramRepo_CheckConstraintLeavesRowUntouched(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteWorkProgramRepo(db)
	ctx := context.Background()

	w := testutil.NewTestWorkProgram("Close books", testutil.WithCompletion(30))
	require.NoError(t, repo.Create(ctx, w))

	w.CompletionPct = 130
	err := repo.Update(ctx, w)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidWorkProgram)

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.CompletionPct)
}

func TestWorkProgramRepo_UnknownReference(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteWorkProgramRepo(db)

	err := repo.Create(context.Background(), testutil.NewTestWorkProgram("x", testutil.WithActivity("missing")))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}

func TestWorkProgramRepo_ListFilter(t *testing.T) {
	db := testutil.NewTestDB(t)
	depts := NewSQLiteDepartmentRepo(db)
	repo := NewSQLiteWorkProgramRepo(db)
	ctx := context.Background()

	dept := testutil.NewTestDepartment("Ops", domain.ScopeInternal)
	require.NoError(t, depts.Create(ctx, dept))
	require.NoError(t, repo.Create(ctx, testutil.NewTestWorkProgram("A", testutil.WithDepartment(dept.ID))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestWorkProgram("B", testutil.WithProgramStatus(domain.StatusDone))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestWorkProgram("C", testutil.WithDepartment(dept.ID), testutil.WithProgramStatus(domain.StatusDone))))

	all, err := repo.List(ctx, WorkProgramFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	done, err := repo.List(ctx, WorkProgramFilter{Status: domain.StatusDone})
	require.NoError(t, err)
	assert.Len(t, done, 2)

	both, err := repo.List(ctx, WorkProgramFilter{Status: domain.StatusDone, DepartmentID: dept.ID})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "C", both[0].Name)
}

func TestWorkProgramRepo_DepartmentDeleteSetsNull(t *testing.T) {
	db := testutil.NewTestDB(t)
	depts := NewSQLiteDepartmentRepo(db)
	repo := NewSQLiteWorkProgramRepo(db)
	ctx := context.Background()

	dept := testutil.NewTestDepartment("Ops", domain.ScopeInternal)
	require.NoError(t, depts.Create(ctx, dept))
	w := testutil.NewTestWorkProgram("A", testutil.WithDepartment(dept.ID))
	require.NoError(t, repo.Create(ctx, w))

	_, err := db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, dept.ID)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DepartmentID)
}

func TestWorkProgramRepo_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteWorkProgramRepo(db)
	ctx := context.Background()

	w := testutil.NewTestWorkProgram("A")
	require.NoError(t, repo.Create(ctx, w))
	require.NoError(t, repo.Delete(ctx, w.ID))

	_, err := repo.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, w.ID), domain.ErrNotFound)
}

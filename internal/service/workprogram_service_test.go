package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/alexanderramin/workprog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkProgramService_CreateDefaults(t *testing.T) {
	env := setupEnv(t)
	svc := env.workProgramService()
	ctx := context.Background()

	w := domain.NewWorkProgram("Close books", "", time.Time{})
	require.NoError(t, svc.Create(ctx, w))
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, testOwner, w.OwnerID)

	got, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, got.Status)
	assert.Equal(t, domain.PriorityMedium, got.Priority)
	assert.Equal(t, 0, got.PostponeCount)
}

func TestWorkProgramService_CompletionOutOfRangeRejected(t *testing.T) {
	env := setupEnv(t)
	svc := env.workProgramService()
	ctx := context.Background()

	w := testutil.NewTestWorkProgram("Close books", testutil.WithCompletion(40))
	require.NoError(t, svc.Create(ctx, w))

	for _, pct := range []float64{-1, 100.5, 150} {
		update := *w
		update.CompletionPct = pct
		err := svc.Update(ctx, &update)
		require.Error(t, err, "pct=%v", pct)
		assert.ErrorIs(t, err, domain.ErrInvalidWorkProgram)
	}

	got, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.CompletionPct, "a rejected write leaves the stored value untouched")

	bad := testutil.NewTestWorkProgram("Too much", testutil.WithCompletion(101))
	assert.ErrorIs(t, svc.Create(ctx, bad), domain.ErrInvalidWorkProgram)
	_, err = svc.Get(ctx, bad.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkProgramService_UpdateKeepsCreation(t *testing.T) {
	env := setupEnv(t)
	svc := env.workProgramService()
	ctx := context.Background()

	w := testutil.NewTestWorkProgram("Close books")
	require.NoError(t, svc.Create(ctx, w))
	created := w.CreatedAt

	update := testutil.NewTestWorkProgram("Close books v2", testutil.WithProgramStatus(domain.StatusOngoing))
	update.ID = w.ID
	update.OwnerID = ""
	require.NoError(t, svc.Update(ctx, update))

	got, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Close books v2", got.Name)
	assert.Equal(t, domain.StatusOngoing, got.Status)
	assert.Equal(t, testOwner, got.OwnerID)
	assert.True(t, created.Equal(got.CreatedAt))

	missing := testutil.NewTestWorkProgram("Ghost")
	assert.ErrorIs(t, svc.Update(ctx, missing), domain.ErrNotFound)
}

func TestWorkProgramService_ListFilter(t *testing.T) {
	env := setupEnv(t)
	svc := env.workProgramService()
	ctx := context.Background()

	dept := env.addDepartment(t, "Finance", domain.ScopeInternal)
	require.NoError(t, svc.Create(ctx, testutil.NewTestWorkProgram("A", testutil.WithDepartment(dept.ID))))
	require.NoError(t, svc.Create(ctx, testutil.NewTestWorkProgram("B", testutil.WithProgramStatus(domain.StatusDone))))

	byDept, err := svc.List(ctx, repository.WorkProgramFilter{DepartmentID: dept.ID})
	require.NoError(t, err)
	require.Len(t, byDept, 1)
	assert.Equal(t, "A", byDept[0].Name)

	done, err := svc.List(ctx, repository.WorkProgramFilter{Status: domain.StatusDone})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "B", done[0].Name)
}

func TestWorkProgramService_ViewExternalDepartment(t *testing.T) {
	env := setupEnv(t)
	svc := env.workProgramService()
	ctx := context.Background()

	ext := env.addDepartment(t, "Client", domain.ScopeExternal)
	internal := env.addDepartment(t, "Accounting", domain.ScopeInternal)

	cases := []struct {
		name string
		opts []testutil.ProgramOption
		want bool
	}{
		{"external", []testutil.ProgramOption{testutil.WithDepartment(ext.ID)}, true},
		{"internal", []testutil.ProgramOption{testutil.WithDepartment(internal.ID)}, false},
		{"none", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.NewTestWorkProgram(tc.name, tc.opts...)
			require.NoError(t, svc.Create(ctx, w))

			view, err := svc.View(ctx, w.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, view.IsExternalDepartment)
		})
	}
}

func TestWorkProgramService_Submit(t *testing.T) {
	env := setupEnv(t)
	svc := env.workProgramService()
	ctx := context.Background()

	act := env.addRef(t, testutil.NewTestActivity("Review"))
	proc := env.addRef(t, testutil.NewTestProcedure(act.ID, "Sign off"))
	memo := env.addRef(t, testutil.NewTestDeliverable(act.ID, "Memo"))
	report := env.addRef(t, testutil.NewTestDeliverable(act.ID, "Report"))
	alice := env.addEmployee(t, "Alice")
	bob := env.addEmployee(t, "Bob")

	values := url.Values{
		"name":                  {"Close books"},
		"activity_id":           {act.ID},
		"procedure_id":          {proc.ID},
		"deliverable_ids":       {memo.ID, report.ID},
		"support_ids":           {alice.ID, bob.ID},
		"responsible_id":        {alice.ID},
		"priority":              {"High"},
		"month":                 {"June"},
		"week_start":            {"2025-06-09"},
		"assignment_date":       {"2025-06-10"},
		"duration_effort":       {"7.5"},
		"nb_postpones":          {"2"},
		"completion_percentage": {"55.5"},
		"satisfaction_level":    {""},
		"champ1":                {"extra"},
	}
	w, err := svc.Submit(ctx, values)
	require.NoError(t, err)

	got, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Close books", got.Name)
	assert.Equal(t, act.ID, domain.StrValue(got.ActivityID))
	assert.Equal(t, proc.ID, domain.StrValue(got.ProcedureID))
	assert.Equal(t, []string{memo.ID, report.ID}, got.DeliverableIDs)
	assert.Equal(t, []string{alice.ID, bob.ID}, got.SupportIDs)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, "june", got.Month)
	require.NotNil(t, got.WeekStart)
	assert.Equal(t, "2025-06-09", got.WeekStart.Format("2006-01-02"))
	require.NotNil(t, got.AssignmentDate)
	assert.Equal(t, "2025-06-10", got.AssignmentDate.Format("2006-01-02"))
	assert.Equal(t, 7.5, got.DurationHours)
	assert.Equal(t, 2, got.PostponeCount)
	assert.Equal(t, 55.5, got.CompletionPct)
	assert.Equal(t, domain.SatisfactionUnset, got.Satisfaction)
	assert.Equal(t, "extra", got.Field1)
	assert.Equal(t, testOwner, got.OwnerID)
}

func TestWorkProgramService_SubmitFailuresCreateNothing(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		want   error
	}{
		{"bad number", url.Values{"nb_postpones": {"two"}}, domain.ErrInvalidWorkProgram},
		{"bad float", url.Values{"completion_percentage": {"half"}}, domain.ErrInvalidWorkProgram},
		{"out of range", url.Values{"completion_percentage": {"101"}}, domain.ErrInvalidWorkProgram},
		{"bad enum", url.Values{"priority": {"urgent"}}, domain.ErrInvalidWorkProgram},
		{"bad date", url.Values{"initial_deadline": {"tomorrow"}}, domain.ErrInvalidWorkProgram},
		{"week not monday", url.Values{"week_start": {"2025-06-10"}}, domain.ErrInvalidWorkProgram},
		{"unknown activity", url.Values{"activity_id": {"no-such-id"}}, domain.ErrUnknownReference},
		{"unknown deliverable", url.Values{"deliverable_ids": {"no-such-id"}}, domain.ErrUnknownReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupEnv(t)
			svc := env.workProgramService()
			ctx := context.Background()

			_, err := svc.Submit(ctx, tc.values)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			all, err := svc.List(ctx, repository.WorkProgramFilter{})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestWorkProgramService_SubmitDefaultName(t *testing.T) {
	env := setupEnv(t)
	svc := env.workProgramService()

	w, err := svc.Submit(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProgramName, w.Name)
}

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

func TestDepartmentRepo_ListByTypeInCreationOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteDepartmentRepo(db)
	ctx := context.Background()

	zed := testutil.NewTestDepartment("Zed Partners", domain.ScopeExternal)
	zed.CreatedAt = zed.CreatedAt.Add(-time.Minute)
	acme := testutil.NewTestDepartment("Acme", domain.ScopeExternal)
	hr := testutil.NewTestDepartment("HR", domain.ScopeInternal)
	for _, d := range []*domain.Department{acme, zed, hr} {
		require.NoError(t, repo.Create(ctx, d))
	}

	ext, err := repo.ListByType(ctx, domain.ScopeExternal)
	require.NoError(t, err)
	require.Len(t, ext, 2)
	assert.Equal(t, zed.ID, ext[0].ID)
	assert.Equal(t, acme.ID, ext[1].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Acme", all[0].Name)
}

func TestEmployeeRepo_FindByName(t *testing.T) {
	db := testutil.NewTestDB(t)
	depts := NewSQLiteDepartmentRepo(db)
	repo := NewSQLiteEmployeeRepo(db)
	ctx := context.Background()

	dept := testutil.NewTestDepartment("Ops", "")
	require.NoError(t, depts.Create(ctx, dept))
	ann := testutil.NewTestEmployee("Ann", &dept.ID)
	require.NoError(t, repo.Create(ctx, ann))

	found, err := repo.FindByName(ctx, "Ann")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, found.ID)
	assert.Equal(t, dept.ID, domain.StrValue(found.DepartmentID))

	_, err = repo.FindByName(ctx, "Nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Create(ctx, testutil.NewTestEmployee("Ghost", domain.StrPtr("missing")))
	assert.ErrorIs(t, err, domain.ErrInvalidEntity)
}

func TestProjectRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	p := testutil.NewTestProject("Client rollout", domain.ScopeExternal)
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeExternal, got.Type)

	byName, err := repo.FindByName(ctx, "Client rollout")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

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

func TestReferenceRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)
	ctx := context.Background()

	dom := testutil.NewTestRef(domain.KindDomain, "Finance", testutil.WithDomainType(domain.ScopeExternal))
	require.NoError(t, repo.Create(ctx, dom))

	fetched, err := repo.GetByID(ctx, domain.KindDomain, dom.ID)
	require.NoError(t, err)
	assert.Equal(t, "Finance", fetched.Name)
	assert.Equal(t, "finance", fetched.Key)
	assert.Equal(t, domain.ScopeExternal, fetched.DomainType)
	assert.Nil(t, fetched.ParentID)
	assert.Equal(t, dom.CreatedAt, fetched.CreatedAt)

	byKey, err := repo.GetByKey(ctx, domain.KindDomain, "finance")
	require.NoError(t, err)
	assert.Equal(t, dom.ID, byKey.ID)
}

func TestReferenceRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)

	_, err := repo.GetByID(context.Background(), domain.KindActivity, "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferenceRepo_DuplicateNamesGetDistinctKeys(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)
	ctx := context.Background()

	first := testutil.NewTestActivity("Review")
	second := testutil.NewTestActivity("Review")
	third := testutil.NewTestActivity("review!")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, third))

	assert.Equal(t, "review", first.Key)
	assert.Equal(t, "review-2", second.Key)
	assert.Equal(t, "review-3", third.Key)
}

func TestReferenceRepo_FindByName_FirstCreatedWins(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)
	ctx := context.Background()

	older := testutil.NewTestActivity("Review")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := testutil.NewTestActivity("Review")
	// Insert the newer one first so rowid order differs from created_at order.
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, older))

	found, err := repo.FindByName(ctx, domain.KindActivity, "Review")
	require.NoError(t, err)
	assert.Equal(t, older.ID, found.ID)

	_, err = repo.FindByName(ctx, domain.KindActivity, "review")
	assert.ErrorIs(t, err, domain.ErrNotFound, "name match is exact")
}

func TestReferenceRepo_ListChildren(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)
	ctx := context.Background()

	a1 := testutil.NewTestActivity("Review")
	a2 := testutil.NewTestActivity("Close")
	require.NoError(t, repo.Create(ctx, a1))
	require.NoError(t, repo.Create(ctx, a2))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(a1.ID, "Sample")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(a1.ID, "Analyse")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestProcedure(a2.ID, "Reconcile")))

	children, err := repo.ListChildren(ctx, domain.KindProcedure, a1.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "Analyse", children[0].Name)
	assert.Equal(t, "Sample", children[1].Name)

	all, err := repo.List(ctx, domain.KindProcedure)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReferenceRepo_CreateWithMissingParent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)

	err := repo.Create(context.Background(), testutil.NewTestProcedure("missing", "Sample"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidEntity)
}

func TestReferenceRepo_UpdateKeepsKey(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)
	ctx := context.Background()

	a := testutil.NewTestActivity("Review")
	require.NoError(t, repo.Create(ctx, a))

	a.Name = "Quarterly review"
	require.NoError(t, repo.Update(ctx, a))

	fetched, err := repo.GetByID(ctx, domain.KindActivity, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly review", fetched.Name)
	assert.Equal(t, "review", fetched.Key)
}

func TestReferenceRepo_DeleteRestrictedByChildren(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)
	ctx := context.Background()

	a := testutil.NewTestActivity("Review")
	require.NoError(t, repo.Create(ctx, a))
	p := testutil.NewTestProcedure(a.ID, "Sample")
	require.NoError(t, repo.Create(ctx, p))

	err := repo.Delete(ctx, domain.KindActivity, a.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeleteRestricted)

	_, err = repo.GetByID(ctx, domain.KindActivity, a.ID)
	assert.NoError(t, err, "activity must survive")
	_, err = repo.GetByID(ctx, domain.KindProcedure, p.ID)
	assert.NoError(t, err, "procedure must survive")

	require.NoError(t, repo.Delete(ctx, domain.KindProcedure, p.ID))
	require.NoError(t, repo.Delete(ctx, domain.KindActivity, a.ID))

	err = repo.Delete(ctx, domain.KindActivity, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferenceRepo_DeleteRestrictedByWorkProgram(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReferenceRepo(db)
	programs := NewSQLiteWorkProgramRepo(db)
	ctx := context.Background()

	a := testutil.NewTestActivity("Review")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, programs.Create(ctx, testutil.NewTestWorkProgram("Close books", testutil.WithActivity(a.ID))))

	n, err := repo.CountDependents(ctx, domain.KindActivity, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = repo.Delete(ctx, domain.KindActivity, a.ID)
	assert.ErrorIs(t, err, domain.ErrDeleteRestricted)
}

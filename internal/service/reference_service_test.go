package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceService_CreateAssignsUniqueKeys(t *testing.T) {
	env := setupEnv(t)
	svc := env.referenceService()
	ctx := context.Background()

	first := &domain.RefEntity{Kind: domain.KindActivity, Name: " Review "}
	require.NoError(t, svc.Create(ctx, first))
	second := &domain.RefEntity{Kind: domain.KindActivity, Name: "Review"}
	require.NoError(t, svc.Create(ctx, second))

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Review", first.Name)
	assert.Equal(t, "review", first.Key)
	assert.Equal(t, "review-2", second.Key)

	got, err := svc.GetByKey(ctx, domain.KindActivity, "review-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestReferenceService_CreateDomainDefaultsToInternal(t *testing.T) {
	env := setupEnv(t)
	svc := env.referenceService()
	ctx := context.Background()

	d := &domain.RefEntity{Kind: domain.KindDomain, Name: "Finance"}
	require.NoError(t, svc.Create(ctx, d))

	got, err := svc.Get(ctx, domain.KindDomain, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeInternal, got.DomainType)
}

func TestReferenceService_CreateChecksParent(t *testing.T) {
	env := setupEnv(t)
	svc := env.referenceService()
	ctx := context.Background()

	missing := "no-such-activity"
	err := svc.Create(ctx, &domain.RefEntity{Kind: domain.KindProcedure, Name: "Sign off", ParentID: &missing})
	assert.ErrorIs(t, err, domain.ErrUnknownReference)

	// A procedure id is not a valid activity parent.
	act := env.addRef(t, testutil.NewTestActivity("Review"))
	proc := env.addRef(t, testutil.NewTestProcedure(act.ID, "Sign off"))
	err = svc.Create(ctx, &domain.RefEntity{Kind: domain.KindDeliverable, Name: "Memo", ParentID: &proc.ID})
	assert.ErrorIs(t, err, domain.ErrUnknownReference)

	assert.Empty(t, refNames(t, env.refs, domain.KindDeliverable))
}

func TestReferenceService_RenameKeepsKey(t *testing.T) {
	env := setupEnv(t)
	svc := env.referenceService()
	ctx := context.Background()

	act := env.addRef(t, testutil.NewTestActivity("Review"))

	renamed, err := svc.Rename(ctx, domain.KindActivity, act.ID, "Peer review")
	require.NoError(t, err)
	assert.Equal(t, "Peer review", renamed.Name)
	assert.Equal(t, act.Key, renamed.Key)

	_, err = svc.Rename(ctx, domain.KindActivity, act.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidEntity)

	got, err := svc.Get(ctx, domain.KindActivity, act.ID)
	require.NoError(t, err)
	assert.Equal(t, "Peer review", got.Name)
}

func TestReferenceService_DeleteRestricted(t *testing.T) {
	env := setupEnv(t)
	svc := env.referenceService()
	ctx := context.Background()

	act := env.addRef(t, testutil.NewTestActivity("Review"))
	proc := env.addRef(t, testutil.NewTestProcedure(act.ID, "Sign off"))

	err := svc.Delete(ctx, domain.KindActivity, act.ID)
	assert.ErrorIs(t, err, domain.ErrDeleteRestricted)
	_, err = svc.Get(ctx, domain.KindActivity, act.ID)
	require.NoError(t, err, "restricted delete must leave the entity in place")

	w := testutil.NewTestWorkProgram("Close books", testutil.WithProcedure(proc.ID))
	require.NoError(t, env.programs.Create(ctx, w))
	assert.ErrorIs(t, svc.Delete(ctx, domain.KindProcedure, proc.ID), domain.ErrDeleteRestricted)

	require.NoError(t, env.programs.Delete(ctx, w.ID))
	require.NoError(t, svc.Delete(ctx, domain.KindProcedure, proc.ID))
	require.NoError(t, svc.Delete(ctx, domain.KindActivity, act.ID))

	assert.ErrorIs(t, svc.Delete(ctx, domain.KindActivity, act.ID), domain.ErrNotFound)
}

func TestReferenceService_Resolve(t *testing.T) {
	env := setupEnv(t)
	svc := env.referenceService()
	ctx := context.Background()

	act := env.addRef(t, testutil.NewTestActivity("Peer Review"))

	for _, ref := range []string{act.ID, "peer-review", "Peer Review"} {
		got, err := svc.Resolve(ctx, domain.KindActivity, ref)
		require.NoError(t, err, "ref=%q", ref)
		assert.Equal(t, act.ID, got.ID)
	}
	_, err := svc.Resolve(ctx, domain.KindActivity, "nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferenceService_Tree(t *testing.T) {
	env := setupEnv(t)
	svc := env.referenceService()
	ctx := context.Background()

	fin := env.addRef(t, testutil.NewTestRef(domain.KindDomain, "Finance"))
	closing := env.addRef(t, testutil.NewTestRef(domain.KindProcess, "Closing", testutil.WithParent(fin.ID)))
	orphan := env.addRef(t, testutil.NewTestRef(domain.KindProcess, "Loose"))
	sub := env.addRef(t, testutil.NewTestRef(domain.KindSubprocess, "Month end", testutil.WithParent(closing.ID)))
	act := env.addRef(t, testutil.NewTestActivity("Review", testutil.WithParent(sub.ID)))
	env.addRef(t, testutil.NewTestProcedure(act.ID, "Sign off"))
	env.addRef(t, testutil.NewTestDeliverable(act.ID, "Memo"))

	roots, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, fin.ID, roots[0].Entity.ID)
	assert.Equal(t, orphan.ID, roots[1].Entity.ID)

	require.Len(t, roots[0].Children, 1)
	procNode := roots[0].Children[0]
	assert.Equal(t, closing.ID, procNode.Entity.ID)
	require.Len(t, procNode.Children, 1)
	actNodes := procNode.Children[0].Children
	require.Len(t, actNodes, 1)
	assert.Len(t, actNodes[0].Children, 2, "procedure and deliverable hang below the activity")
}

package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wims-erp/wims/internal/shared"
)

var salesman = shared.SessionUser{ID: "u-7", Name: "Ravi", Role: shared.RoleSalesman}

func TestSubmitAndResolve(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	req, err := svc.Submit(ctx, TypeOrderEdit, salesman, "o-1", "client changed quantities")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, "u-7", req.RequesterID)

	resolved, err := svc.Resolve(ctx, req.ID, true, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, resolved.Status)
	assert.Equal(t, "admin-1", resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
}

func TestSubmitUnknownTypeRefused(t *testing.T) {
	svc := NewService()

	_, err := svc.Submit(context.Background(), RequestType("sudo"), salesman, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestSubmitDuplicatePendingRefused(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, TypeOrderEdit, salesman, "o-1", "")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, TypeOrderEdit, salesman, "o-1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDuplicate))

	// A different target is a different ask.
	_, err = svc.Submit(ctx, TypeOrderEdit, salesman, "o-2", "")
	require.NoError(t, err)
}

func TestResolveTwiceRefused(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	req, err := svc.Submit(ctx, TypeLogin, salesman, "", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, req.ID, false, "admin-1")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, req.ID, true, "admin-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
}

func TestConsumeIsSingleUse(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	req, err := svc.Submit(ctx, TypePriceAdjustment, salesman, "o-1", "")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, req.ID, true, "admin-1")
	require.NoError(t, err)

	assert.True(t, svc.Consume(ctx, "u-7", TypePriceAdjustment, "o-1"))
	assert.False(t, svc.Consume(ctx, "u-7", TypePriceAdjustment, "o-1"))
}

func TestConsumeIgnoresPendingAndRejected(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, TypeOrderEdit, salesman, "o-1", "")
	require.NoError(t, err)
	assert.False(t, svc.Consume(ctx, "u-7", TypeOrderEdit, "o-1"))

	denied, err := svc.Submit(ctx, TypeOrderEdit, salesman, "o-2", "")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, denied.ID, false, "admin-1")
	require.NoError(t, err)
	assert.False(t, svc.Consume(ctx, "u-7", TypeOrderEdit, "o-2"))
}

func TestListFilters(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	other := shared.SessionUser{ID: "u-8", Name: "Meena", Role: shared.RoleSalesman}
	first, err := svc.Submit(ctx, TypeOrderEdit, salesman, "o-1", "")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, TypeLogin, other, "", "")
	require.NoError(t, err)

	mine := svc.List(ctx, "u-7", false)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = svc.Resolve(ctx, first.ID, true, "admin-1")
	require.NoError(t, err)

	pending := svc.List(ctx, "", true)
	require.Len(t, pending, 1)
	assert.Equal(t, "u-8", pending[0].RequesterID)

	all := svc.List(ctx, "", false)
	assert.Len(t, all, 2)
}

package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wims-erp/wims/internal/clients"
	"github.com/wims-erp/wims/internal/permissions"
	"github.com/wims-erp/wims/internal/shared"
)

type memRepo struct {
	snapshot []Order
	saveErr  error
}

func (m *memRepo) Load(ctx context.Context) ([]Order, error) {
	out := make([]Order, len(m.snapshot))
	copy(out, m.snapshot)
	return out, nil
}

func (m *memRepo) Save(ctx context.Context, snapshot []Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshot = snapshot
	return nil
}

type stubDirectory struct {
	client       clients.Client
	orderRecords int
}

func (d *stubDirectory) Get(ctx context.Context, id string) (*clients.Client, error) {
	if id != d.client.ID {
		return nil, shared.ErrNotFound
	}
	c := d.client
	return &c, nil
}

func (d *stubDirectory) RecordOrder(ctx context.Context, id string) error {
	d.orderRecords++
	return nil
}

func newTestService(policy CompletionPolicy) (*Service, *memRepo, *stubDirectory) {
	repo := &memRepo{}
	dir := &stubDirectory{client: clients.Client{ID: "c-1", Name: "Acme Traders"}}
	return NewService(repo, dir, permissions.NewService(), policy), repo, dir
}

func createTestOrder(t *testing.T, svc *Service) *Order {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: "c-1",
		Items: []CreateOrderItemRequest{
			{Name: "Mango Crush 500ml", RequestedQuantity: 10, SalesmanPrice: 100},
			{Name: "Lime Soda 1L", RequestedQuantity: 5, SalesmanPrice: 200},
		},
	}, shared.SessionUser{ID: "u-7", Name: "Ravi", Role: shared.RoleSalesman})
	require.NoError(t, err)
	return order
}

// priceTestOrder moves the order to admin_priced with prices 110/210 and
// a ±15 adjustment collar.
func priceTestOrder(t *testing.T, svc *Service, order *Order) *Order {
	t.Helper()
	priced, err := svc.SetOfficialPricing(context.Background(), order.ID, SetPricingRequest{
		ItemPrices: map[string]float64{
			order.Items[0].ID: 110,
			order.Items[1].ID: 210,
		},
		AllowPriceAdjustment: true,
		PriceAdjustmentRange: &AdjustmentRange{Min: -15, Max: 15},
	})
	require.NoError(t, err)
	return priced
}

func TestCreateStartsPendingWithProposal(t *testing.T) {
	svc, _, dir := newTestService(CompleteOnBill)

	order := createTestOrder(t, svc)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, "Acme Traders", order.ClientName)
	assert.Equal(t, "u-7", order.SalesmanID)
	assert.Regexp(t, `^ORD-\d{8}-\d{4}$`, order.OrderNumber)
	assert.Equal(t, 1, dir.orderRecords)

	require.NotNil(t, order.SalesmanPricing)
	assert.InDelta(t, 2000, order.SalesmanPricing.Total, 0.001)
	assert.InDelta(t, 0, order.SalesmanPricing.Tax, 0.001)
	assert.Nil(t, order.AdminPricing)
	assert.Nil(t, order.FinalPricing)
}

func TestCreateUnknownClientRefused(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: "missing",
		Items:    []CreateOrderItemRequest{{Name: "X", RequestedQuantity: 1}},
	}, shared.SessionUser{ID: "u-7", Role: shared.RoleSalesman})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestSetOfficialPricingAppliesTax(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)

	order := createTestOrder(t, svc)
	priced := priceTestOrder(t, svc, order)

	assert.Equal(t, StatusAdminPriced, priced.Status)
	require.NotNil(t, priced.AdminPricing)
	assert.InDelta(t, 2150, priced.AdminPricing.Subtotal, 0.001)
	assert.InDelta(t, 215, priced.AdminPricing.Tax, 0.001)
	assert.InDelta(t, 2365, priced.AdminPricing.Total, 0.001)

	// The proposal stays on record untouched.
	require.NotNil(t, priced.SalesmanPricing)
	assert.InDelta(t, 2000, priced.SalesmanPricing.Total, 0.001)
	assert.Equal(t, priced.AdminPricing, priced.CurrentPricing())
}

func TestSetOfficialPricingRequiresEveryItem(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	_, err := svc.SetOfficialPricing(context.Background(), order.ID, SetPricingRequest{
		ItemPrices: map[string]float64{order.Items[0].ID: 110},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Nil(t, stored.AdminPricing)
}

func TestSetOfficialPricingRejectsUnknownItem(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	_, err := svc.SetOfficialPricing(context.Background(), order.ID, SetPricingRequest{
		ItemPrices: map[string]float64{
			order.Items[0].ID: 110,
			order.Items[1].ID: 210,
			"ghost":           99,
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestAdjustOutOfBandRefusesWholeRequest(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	// +15 alone would pass, but the +20 companion sinks both.
	_, err := svc.Adjust(context.Background(), order.ID, AdjustPricingRequest{
		Adjustments: map[string]float64{
			order.Items[0].ID: 15,
			order.Items[1].ID: 20,
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAdminPriced, stored.Status)
	assert.Nil(t, stored.FinalPricing)
}

func TestAdjustWithinBandBuildsFinalPricing(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	adjusted, err := svc.Adjust(context.Background(), order.ID, AdjustPricingRequest{
		Adjustments: map[string]float64{
			order.Items[0].ID: 10,
			order.Items[1].ID: -5,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSalesmanAdjusted, adjusted.Status)
	require.NotNil(t, adjusted.FinalPricing)
	assert.InDelta(t, 2225, adjusted.FinalPricing.Subtotal, 0.001)
	assert.InDelta(t, 222.5, adjusted.FinalPricing.Tax, 0.001)
	assert.InDelta(t, 2447.5, adjusted.FinalPricing.Total, 0.001)
	assert.InDelta(t, 120, adjusted.FinalPricing.ItemPrices[order.Items[0].ID], 0.001)
	assert.InDelta(t, 205, adjusted.FinalPricing.ItemPrices[order.Items[1].ID], 0.001)
	assert.InDelta(t, 10, adjusted.FinalPricing.Adjustments[order.Items[0].ID], 0.001)

	// All three snapshots coexist; final wins.
	assert.InDelta(t, 2000, adjusted.SalesmanPricing.Total, 0.001)
	assert.InDelta(t, 2365, adjusted.AdminPricing.Total, 0.001)
	assert.Equal(t, adjusted.FinalPricing, adjusted.CurrentPricing())
}

func TestAdjustPartialDeltasDefaultToZero(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	adjusted, err := svc.Adjust(context.Background(), order.ID, AdjustPricingRequest{
		Adjustments: map[string]float64{order.Items[0].ID: 10},
	})
	require.NoError(t, err)
	assert.InDelta(t, 120, adjusted.FinalPricing.ItemPrices[order.Items[0].ID], 0.001)
	assert.InDelta(t, 210, adjusted.FinalPricing.ItemPrices[order.Items[1].ID], 0.001)
}

func TestAdjustRefusedWithoutGrant(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	_, err := svc.SetOfficialPricing(context.Background(), order.ID, SetPricingRequest{
		ItemPrices: map[string]float64{
			order.Items[0].ID: 110,
			order.Items[1].ID: 210,
		},
	})
	require.NoError(t, err)

	_, err = svc.Adjust(context.Background(), order.ID, AdjustPricingRequest{
		Adjustments: map[string]float64{order.Items[0].ID: 1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestAdjustRefusedInWrongStatus(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	_, err := svc.Adjust(context.Background(), order.ID, AdjustPricingRequest{
		Adjustments: map[string]float64{order.Items[0].ID: 1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
}

func TestEditPendingOrderRebuildsProposal(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	edited, err := svc.Edit(context.Background(), order.ID, UpdateOrderRequest{
		Items: []CreateOrderItemRequest{
			{Name: "Mango Crush 500ml", RequestedQuantity: 12, SalesmanPrice: 100},
		},
		Notes: "client dropped the soda",
	}, shared.SessionUser{ID: "u-7", Role: shared.RoleSalesman})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, edited.Status)
	require.Len(t, edited.Items, 1)
	assert.InDelta(t, 1200, edited.SalesmanPricing.Total, 0.001)
	assert.InDelta(t, 0, edited.SalesmanPricing.Tax, 0.001)
	assert.Equal(t, "client dropped the soda", edited.Notes)
}

func TestEditPricedOrderNeedsGrant(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	update := UpdateOrderRequest{
		Items: []CreateOrderItemRequest{
			{Name: "Mango Crush 500ml", RequestedQuantity: 12, SalesmanPrice: 100},
		},
	}

	// Salesman without an approved grant is refused.
	_, err := svc.Edit(context.Background(), order.ID, update, shared.SessionUser{ID: "u-7", Role: shared.RoleSalesman})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAdminPriced, stored.Status)
	require.NotNil(t, stored.AdminPricing)

	// Admins edit without asking.
	edited, err := svc.Edit(context.Background(), order.ID, update, shared.SessionUser{ID: "a-1", Role: shared.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, edited.Status)
	assert.Nil(t, edited.AdminPricing)
}

func TestEditPricedOrderConsumesGrant(t *testing.T) {
	repo := &memRepo{}
	dir := &stubDirectory{client: clients.Client{ID: "c-1", Name: "Acme Traders"}}
	grants := permissions.NewService()
	svc := NewService(repo, dir, grants, CompleteOnBill)
	ctx := context.Background()

	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	salesman := shared.SessionUser{ID: "u-7", Name: "Ravi", Role: shared.RoleSalesman}
	ask, err := grants.Submit(ctx, permissions.TypeOrderEdit, salesman, order.ID, "client changed quantities")
	require.NoError(t, err)
	_, err = grants.Resolve(ctx, ask.ID, true, "admin-1")
	require.NoError(t, err)

	edited, err := svc.Edit(ctx, order.ID, UpdateOrderRequest{
		Items: []CreateOrderItemRequest{
			{Name: "Mango Crush 500ml", RequestedQuantity: 12, SalesmanPrice: 100},
		},
	}, salesman)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, edited.Status)
	assert.Nil(t, edited.AdminPricing)
	assert.Nil(t, edited.FinalPricing)
	assert.False(t, edited.AllowPriceAdjustment)
	assert.Nil(t, edited.PriceAdjustmentRange)

	// The grant is single-use: once the order is re-priced, the next
	// edit needs a fresh approval.
	_, err = svc.SetOfficialPricing(ctx, order.ID, SetPricingRequest{
		ItemPrices: map[string]float64{edited.Items[0].ID: 110},
	})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, order.ID, UpdateOrderRequest{
		Items: []CreateOrderItemRequest{
			{Name: "Mango Crush 500ml", RequestedQuantity: 15, SalesmanPrice: 100},
		},
	}, salesman)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestEditClosedOrderRefused(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)
	_, err := svc.Approve(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), order.ID, UpdateOrderRequest{
		Items: []CreateOrderItemRequest{
			{Name: "Mango Crush 500ml", RequestedQuantity: 1, SalesmanPrice: 100},
		},
	}, shared.SessionUser{ID: "a-1", Role: shared.RoleAdmin})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
}

func TestRepricingAfterAdjustmentDiscardsFinal(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	_, err := svc.Adjust(context.Background(), order.ID, AdjustPricingRequest{
		Adjustments: map[string]float64{order.Items[0].ID: 10, order.Items[1].ID: -5},
	})
	require.NoError(t, err)

	repriced, err := svc.SetOfficialPricing(context.Background(), order.ID, SetPricingRequest{
		ItemPrices: map[string]float64{
			order.Items[0].ID: 115,
			order.Items[1].ID: 215,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAdminPriced, repriced.Status)
	assert.Nil(t, repriced.FinalPricing)
	assert.InDelta(t, 2225, repriced.AdminPricing.Subtotal, 0.001)
	require.NotNil(t, repriced.SalesmanPricing)
}

func TestApproveFromPricedStatuses(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	approved, err := svc.Approve(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
}

func TestApprovePendingRefused(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	_, err := svc.Approve(context.Background(), order.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidStatus))
}

func TestRejectRequiresReasonAndKeepsSnapshots(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)

	_, err := svc.Reject(context.Background(), order.ID, "  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	rejected, err := svc.Reject(context.Background(), order.ID, "pricing dispute")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "pricing dispute", rejected.RejectionReason)
	require.NotNil(t, rejected.AdminPricing)
}

func TestManualCompletionPolicy(t *testing.T) {
	svc, _, _ := newTestService(CompleteManually)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)
	_, err := svc.Approve(context.Background(), order.ID)
	require.NoError(t, err)

	// Under the manual policy billing never completes the order.
	require.NoError(t, svc.CompleteForBilling(context.Background(), order.ID))
	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)

	completed, err := svc.Complete(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
}

func TestOnBillCompletionPolicy(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)
	priceTestOrder(t, svc, order)
	_, err := svc.Approve(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), order.ID)
	require.Error(t, err)

	require.NoError(t, svc.CompleteForBilling(context.Background(), order.ID))
	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
}

func TestSoftDeleteHidesOrder(t *testing.T) {
	svc, repo, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	require.NoError(t, svc.SoftDelete(context.Background(), order.ID))

	_, err := svc.Get(context.Background(), order.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	// The record stays in storage with the marker set.
	require.Len(t, repo.snapshot, 1)
	assert.True(t, repo.snapshot[0].Deleted)

	visible, err := svc.List(context.Background(), ListOrdersRequest{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.List(context.Background(), ListOrdersRequest{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Approve(context.Background(), order.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestListFilters(t *testing.T) {
	svc, _, _ := newTestService(CompleteOnBill)
	first := createTestOrder(t, svc)
	second := createTestOrder(t, svc)
	priceTestOrder(t, svc, second)

	pending := StatusPending
	got, err := svc.List(context.Background(), ListOrdersRequest{Status: &pending})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)

	mine, err := svc.List(context.Background(), ListOrdersRequest{SalesmanID: "u-7"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := svc.List(context.Background(), ListOrdersRequest{SalesmanID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveFailureSurfacesPersistenceError(t *testing.T) {
	svc, repo, _ := newTestService(CompleteOnBill)
	order := createTestOrder(t, svc)

	repo.saveErr = shared.ErrPersistence
	_, err := svc.SetOfficialPricing(context.Background(), order.ID, SetPricingRequest{
		ItemPrices: map[string]float64{
			order.Items[0].ID: 110,
			order.Items[1].ID: 210,
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrPersistence))

	repo.saveErr = nil
	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

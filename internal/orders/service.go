package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wims-erp/wims/internal/clients"
	"github.com/wims-erp/wims/internal/permissions"
	"github.com/wims-erp/wims/internal/shared"
)

// CompletionPolicy decides when an approved order becomes completed.
type CompletionPolicy string

const (
	// CompleteOnBill marks an order completed as soon as a bill is
	// generated from it.
	CompleteOnBill CompletionPolicy = "on_bill"
	// CompleteManually leaves completion to an explicit admin action.
	CompleteManually CompletionPolicy = "manual"
)

// ParseCompletionPolicy validates a configured policy value.
func ParseCompletionPolicy(raw string) (CompletionPolicy, error) {
	switch CompletionPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case CompleteOnBill:
		return CompleteOnBill, nil
	case CompleteManually:
		return CompleteManually, nil
	default:
		return "", fmt.Errorf("%w: unknown completion policy %q", shared.ErrValidation, raw)
	}
}

// ClientDirectory is the slice of the client catalog the order workflow
// needs: resolve a client and record that an order referenced it.
type ClientDirectory interface {
	Get(ctx context.Context, id string) (*clients.Client, error)
	RecordOrder(ctx context.Context, id string) error
}

// GrantGate spends single-use permission grants issued through the
// admin queue. *permissions.Service implements it.
type GrantGate interface {
	Consume(ctx context.Context, requesterID string, t permissions.RequestType, targetID string) bool
}

// Service owns the order lifecycle. A mutex serialises the
// load-mutate-save cycle against the snapshot store.
type Service struct {
	repo    Repository
	clients ClientDirectory
	grants  GrantGate
	policy  CompletionPolicy
	now     func() time.Time

	mu sync.Mutex
}

// NewService constructs the order workflow service. grants may be nil,
// in which case priced orders cannot be edited by salesmen at all.
func NewService(repo Repository, directory ClientDirectory, grants GrantGate, policy CompletionPolicy) *Service {
	return &Service{
		repo:    repo,
		clients: directory,
		grants:  grants,
		policy:  policy,
		now:     time.Now,
	}
}

// Policy reports the configured completion policy.
func (s *Service) Policy() CompletionPolicy { return s.policy }

// Create registers a salesman's purchase request in status pending with
// an untaxed proposal snapshot built from the self-declared prices.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, salesman shared.SessionUser) (*Order, error) {
	client, err := s.clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	items, prices, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	proposal, err := ComputeProposal(items, prices)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := Order{
		ID:              uuid.NewString(),
		OrderNumber:     fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), len(snapshot)+1),
		SalesmanID:      salesman.ID,
		SalesmanName:    salesman.Name,
		ClientID:        client.ID,
		ClientName:      client.Name,
		Items:           items,
		Status:          StatusPending,
		SalesmanPricing: proposal,
		Notes:           req.Notes,
		CreatedAt:       now,
	}

	snapshot = append(snapshot, order)
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	// Usage counters are advisory; the order itself is already committed.
	_ = s.clients.RecordOrder(ctx, client.ID)

	return &order, nil
}

// buildItems turns request lines into order items with fresh IDs and
// collects the self-declared prices keyed by those IDs.
func buildItems(reqs []CreateOrderItemRequest) ([]OrderItem, map[string]float64, error) {
	items := make([]OrderItem, 0, len(reqs))
	prices := make(map[string]float64, len(reqs))
	for _, it := range reqs {
		if it.RequestedQuantity <= 0 {
			return nil, nil, fmt.Errorf("%w: quantity must be positive for item %q", shared.ErrValidation, it.Name)
		}
		item := OrderItem{
			ID:                uuid.NewString(),
			Name:              strings.TrimSpace(it.Name),
			Category:          it.Category,
			Volume:            it.Volume,
			BottlesPerCase:    it.BottlesPerCase,
			RequestedQuantity: it.RequestedQuantity,
			Unit:              it.Unit,
		}
		if item.Name == "" {
			return nil, nil, fmt.Errorf("%w: item name is required", shared.ErrValidation)
		}
		items = append(items, item)
		prices[item.ID] = it.SalesmanPrice
	}
	return items, prices, nil
}

// Edit replaces an order's line items and rebuilds the untaxed proposal.
// Pending orders are freely editable. Once the admin has priced the
// order, a salesman needs a single-use approved order_edit grant; the
// edit then discards every pricing snapshot above the proposal and
// sends the order back to pending for a fresh round.
func (s *Service) Edit(ctx context.Context, id string, req UpdateOrderRequest, actor shared.SessionUser) (*Order, error) {
	items, prices, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}
	proposal, err := ComputeProposal(items, prices)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(o *Order) error {
		switch o.Status {
		case StatusPending:
		case StatusAdminPriced, StatusSalesmanAdjusted:
			if actor.Role != shared.RoleAdmin {
				if s.grants == nil || !s.grants.Consume(ctx, actor.ID, permissions.TypeOrderEdit, o.ID) {
					return fmt.Errorf("%w: editing a priced order needs an approved order_edit grant", shared.ErrForbidden)
				}
			}
			o.AdminPricing = nil
			o.FinalPricing = nil
			o.AllowPriceAdjustment = false
			o.PriceAdjustmentRange = nil
			o.AdminPricedAt = nil
			o.SalesmanAdjustedAt = nil
			o.SalesmanAdjustmentNotes = ""
		default:
			return fmt.Errorf("%w: cannot edit order in status %s", shared.ErrInvalidStatus, o.Status)
		}

		o.Items = items
		o.SalesmanPricing = proposal
		o.Notes = req.Notes
		o.Status = StatusPending
		return nil
	})
}

// SetOfficialPricing records the admin's authoritative prices, taxed at
// the flat rate, and moves the order to admin_priced. Re-pricing an
// adjusted order replaces the admin snapshot and discards any final one.
func (s *Service) SetOfficialPricing(ctx context.Context, id string, req SetPricingRequest) (*Order, error) {
	if req.AllowPriceAdjustment {
		if req.PriceAdjustmentRange == nil {
			return nil, fmt.Errorf("%w: adjustment range is required when adjustments are allowed", shared.ErrValidation)
		}
		if req.PriceAdjustmentRange.Max <= 0 || req.PriceAdjustmentRange.Min > 0 {
			return nil, fmt.Errorf("%w: adjustment range must span zero", shared.ErrValidation)
		}
	}

	return s.update(ctx, id, func(o *Order) error {
		if o.Status != StatusPending && o.Status != StatusSalesmanAdjusted {
			return fmt.Errorf("%w: cannot price order in status %s", shared.ErrInvalidStatus, o.Status)
		}
		for itemID := range req.ItemPrices {
			if !o.hasItem(itemID) {
				return fmt.Errorf("%w: price given for unknown item %q", shared.ErrValidation, itemID)
			}
		}

		official, err := ComputeOfficial(o.Items, req.ItemPrices)
		if err != nil {
			return err
		}

		now := s.now()
		o.AdminPricing = official
		o.FinalPricing = nil
		o.AllowPriceAdjustment = req.AllowPriceAdjustment
		o.PriceAdjustmentRange = req.PriceAdjustmentRange
		if !req.AllowPriceAdjustment {
			o.PriceAdjustmentRange = nil
		}
		o.AdminNotes = req.AdminNotes
		o.AdminPricedAt = &now
		o.Status = StatusAdminPriced
		return nil
	})
}

// Adjust applies the salesman's per-item deltas on top of the admin
// prices. Validation is all-or-nothing: one out-of-band or unknown delta
// refuses the whole request and leaves the order untouched.
func (s *Service) Adjust(ctx context.Context, id string, req AdjustPricingRequest) (*Order, error) {
	return s.update(ctx, id, func(o *Order) error {
		if o.Status != StatusAdminPriced {
			return fmt.Errorf("%w: cannot adjust order in status %s", shared.ErrInvalidStatus, o.Status)
		}
		if !o.AllowPriceAdjustment || o.PriceAdjustmentRange == nil {
			return fmt.Errorf("%w: price adjustment was not allowed on this order", shared.ErrForbidden)
		}

		band := o.PriceAdjustmentRange.Max
		for itemID, delta := range req.Adjustments {
			if !o.hasItem(itemID) {
				return fmt.Errorf("%w: adjustment for unknown item %q", shared.ErrValidation, itemID)
			}
			if delta < -band || delta > band {
				return fmt.Errorf("%w: adjustment %+.2f for item %q exceeds the allowed range of %.2f", shared.ErrValidation, delta, itemID, band)
			}
		}

		finalPrices := make(map[string]float64, len(o.Items))
		for _, item := range o.Items {
			finalPrices[item.ID] = o.AdminPricing.ItemPrices[item.ID] + req.Adjustments[item.ID]
		}

		final, err := ComputeOfficial(o.Items, finalPrices)
		if err != nil {
			return err
		}
		final.Adjustments = copyPrices(req.Adjustments)

		now := s.now()
		o.FinalPricing = final
		o.SalesmanAdjustmentNotes = req.Notes
		o.SalesmanAdjustedAt = &now
		o.Status = StatusSalesmanAdjusted
		return nil
	})
}

// Approve accepts the current pricing as-is.
func (s *Service) Approve(ctx context.Context, id string) (*Order, error) {
	return s.update(ctx, id, func(o *Order) error {
		if o.Status != StatusAdminPriced && o.Status != StatusSalesmanAdjusted {
			return fmt.Errorf("%w: cannot approve order in status %s", shared.ErrInvalidStatus, o.Status)
		}
		now := s.now()
		o.ApprovedAt = &now
		o.Status = StatusApproved
		return nil
	})
}

// Reject closes the pricing round with a mandatory reason. The pricing
// snapshots stay on record.
func (s *Service) Reject(ctx context.Context, id, reason string) (*Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", shared.ErrValidation)
	}
	return s.update(ctx, id, func(o *Order) error {
		if o.Status != StatusAdminPriced && o.Status != StatusSalesmanAdjusted {
			return fmt.Errorf("%w: cannot reject order in status %s", shared.ErrInvalidStatus, o.Status)
		}
		o.RejectionReason = reason
		o.Status = StatusRejected
		return nil
	})
}

// Complete is the explicit admin action under the manual policy.
func (s *Service) Complete(ctx context.Context, id string) (*Order, error) {
	if s.policy != CompleteManually {
		return nil, fmt.Errorf("%w: orders complete automatically on billing", shared.ErrInvalidStatus)
	}
	return s.update(ctx, id, s.markCompleted)
}

// CompleteForBilling is invoked by bill generation under the on_bill
// policy; under the manual policy it is a no-op.
func (s *Service) CompleteForBilling(ctx context.Context, id string) error {
	if s.policy != CompleteOnBill {
		return nil
	}
	_, err := s.update(ctx, id, s.markCompleted)
	return err
}

func (s *Service) markCompleted(o *Order) error {
	if o.Status != StatusApproved {
		return fmt.Errorf("%w: cannot complete order in status %s", shared.ErrInvalidStatus, o.Status)
	}
	now := s.now()
	o.CompletedAt = &now
	o.Status = StatusCompleted
	return nil
}

// SoftDelete hides an order from listings and blocks further
// transitions. The record and its snapshots stay in storage.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	_, err := s.update(ctx, id, func(o *Order) error {
		o.Deleted = true
		return nil
	})
	return err
}

// Get returns one order; soft-deleted orders are not found.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snapshot {
		if snapshot[i].ID == id && !snapshot[i].Deleted {
			return &snapshot[i], nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", shared.ErrNotFound, id)
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListOrdersRequest) ([]Order, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(snapshot))
	for i := len(snapshot) - 1; i >= 0; i-- {
		o := snapshot[i]
		if o.Deleted && !filter.IncludeDeleted {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.SalesmanID != "" && o.SalesmanID != filter.SalesmanID {
			continue
		}
		if filter.ClientID != "" && o.ClientID != filter.ClientID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// update runs one locked load-mutate-save cycle against a live order.
func (s *Service) update(ctx context.Context, id string, fn func(*Order) error) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snapshot {
		if snapshot[i].ID != id || snapshot[i].Deleted {
			continue
		}
		if err := fn(&snapshot[i]); err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, snapshot); err != nil {
			return nil, err
		}
		return &snapshot[i], nil
	}
	return nil, fmt.Errorf("%w: order %s", shared.ErrNotFound, id)
}

func (o *Order) hasItem(id string) bool {
	for _, item := range o.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

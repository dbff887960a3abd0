package bills

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wims-erp/wims/internal/clients"
	"github.com/wims-erp/wims/internal/orders"
	"github.com/wims-erp/wims/internal/shared"
)

// OrderSource is the slice of the order workflow billing needs: fetch
// an order and notify it that a bill was issued.
type OrderSource interface {
	Get(ctx context.Context, id string) (*orders.Order, error)
	CompleteForBilling(ctx context.Context, id string) error
}

// ClientDirectory resolves client records for GST number fallback.
type ClientDirectory interface {
	Get(ctx context.Context, id string) (*clients.Client, error)
}

// Service generates and processes bills.
type Service struct {
	repo    Repository
	orders  OrderSource
	clients ClientDirectory
	now     func() time.Time

	mu sync.Mutex
}

// NewService constructs the billing service.
func NewService(repo Repository, source OrderSource, directory ClientDirectory) *Service {
	return &Service{
		repo:    repo,
		orders:  source,
		clients: directory,
		now:     time.Now,
	}
}

// Generate derives a bill from an order's authoritative pricing. The
// amounts are copied, never recomputed. At most one bill of each type
// may exist per order.
func (s *Service) Generate(ctx context.Context, req GenerateBillRequest, generatedBy string) (*Bill, error) {
	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Billable() {
		return nil, fmt.Errorf("%w: order %s in status %s has no official pricing to bill", shared.ErrInvalidStatus, order.OrderNumber, order.Status)
	}

	gstNumber := strings.TrimSpace(req.GSTNumber)
	if req.BillType == TypeGST && gstNumber == "" {
		client, err := s.clients.Get(ctx, order.ClientID)
		if err == nil {
			gstNumber = strings.TrimSpace(client.GSTNumber)
		}
		if gstNumber == "" {
			return nil, fmt.Errorf("%w: a GST number is required for a GST bill", shared.ErrValidation)
		}
	}

	pricing := order.CurrentPricing()
	items := make([]BillItem, 0, len(order.Items))
	for _, it := range order.Items {
		unitPrice := pricing.ItemPrices[it.ID]
		items = append(items, BillItem{
			ID:        it.ID,
			Name:      it.Name,
			Volume:    it.Volume,
			Quantity:  it.RequestedQuantity,
			Unit:      it.Unit,
			UnitPrice: unitPrice,
			LineTotal: unitPrice * it.RequestedQuantity,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range snapshot {
		if existing.OrderID == order.ID && existing.BillType == req.BillType {
			return nil, fmt.Errorf("%w: a %s bill already exists for order %s", shared.ErrDuplicate, req.BillType, order.OrderNumber)
		}
	}

	now := s.now()
	bill := Bill{
		ID:          uuid.NewString(),
		BillNumber:  fmt.Sprintf("BILL-%s-%04d", now.Format("20060102"), len(snapshot)+1),
		BillType:    req.BillType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ClientID:    order.ClientID,
		ClientName:  order.ClientName,
		GSTNumber:   gstNumber,
		Items:       items,
		Subtotal:    pricing.Subtotal,
		Tax:         pricing.Tax,
		Total:       pricing.Total,
		Status:      StatusGenerated,
		Notes:       req.Notes,
		GeneratedBy: generatedBy,
		CreatedAt:   now,
	}

	snapshot = append(snapshot, bill)
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	if err := s.orders.CompleteForBilling(ctx, order.ID); err != nil {
		// The bill is committed; an approved order that cannot advance
		// is reconciled by the admin, not by unwinding the bill.
		return &bill, nil
	}
	return &bill, nil
}

// Verify moves a generated bill to verified.
func (s *Service) Verify(ctx context.Context, id string) (*Bill, error) {
	return s.update(ctx, id, func(b *Bill) error {
		if b.Status != StatusGenerated {
			return fmt.Errorf("%w: cannot verify bill in status %s", shared.ErrInvalidStatus, b.Status)
		}
		now := s.now()
		b.VerifiedAt = &now
		b.Status = StatusVerified
		return nil
	})
}

// Process finalises a verified bill.
func (s *Service) Process(ctx context.Context, id string) (*Bill, error) {
	return s.update(ctx, id, func(b *Bill) error {
		if b.Status != StatusVerified {
			return fmt.Errorf("%w: cannot process bill in status %s", shared.ErrInvalidStatus, b.Status)
		}
		now := s.now()
		b.ProcessedAt = &now
		b.Status = StatusProcessed
		return nil
	})
}

// Reject voids a bill with a mandatory reason. Processed bills are
// immutable.
func (s *Service) Reject(ctx context.Context, id, reason string) (*Bill, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", shared.ErrValidation)
	}
	return s.update(ctx, id, func(b *Bill) error {
		if b.Status != StatusGenerated && b.Status != StatusVerified {
			return fmt.Errorf("%w: cannot reject bill in status %s", shared.ErrInvalidStatus, b.Status)
		}
		b.RejectionReason = reason
		b.Status = StatusRejected
		return nil
	})
}

// Get returns one bill.
func (s *Service) Get(ctx context.Context, id string) (*Bill, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snapshot {
		if snapshot[i].ID == id {
			return &snapshot[i], nil
		}
	}
	return nil, fmt.Errorf("%w: bill %s", shared.ErrNotFound, id)
}

// List returns bills, newest first, optionally filtered by order.
func (s *Service) List(ctx context.Context, orderID string) ([]Bill, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Bill, 0, len(snapshot))
	for i := len(snapshot) - 1; i >= 0; i-- {
		if orderID != "" && snapshot[i].OrderID != orderID {
			continue
		}
		out = append(out, snapshot[i])
	}
	return out, nil
}

func (s *Service) update(ctx context.Context, id string, fn func(*Bill) error) (*Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snapshot {
		if snapshot[i].ID != id {
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
	return nil, fmt.Errorf("%w: bill %s", shared.ErrNotFound, id)
}

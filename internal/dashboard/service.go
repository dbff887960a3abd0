package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wims-erp/wims/internal/bills"
	"github.com/wims-erp/wims/internal/clients"
	"github.com/wims-erp/wims/internal/orders"
	"github.com/wims-erp/wims/internal/shared"
	"github.com/wims-erp/wims/internal/users"
)

// CacheKey is where the precomputed summary lives.
const CacheKey = "wims-dashboard-v4"

// CacheTTL bounds staleness between background refreshes.
const CacheTTL = 60 * time.Second

// Summary is the admin landing-page aggregate over every store.
type Summary struct {
	TotalOrders    int            `json:"totalOrders"`
	OrdersByStatus map[string]int `json:"ordersByStatus"`

	// Revenue counts approved and completed orders at their
	// authoritative pricing.
	Revenue        float64 `json:"revenue"`
	RevenueDisplay string  `json:"revenueDisplay"`

	TotalClients   int `json:"totalClients"`
	TotalSalesmen  int `json:"totalSalesmen"`
	PendingSignups int `json:"pendingSignups"`

	TotalBills    int            `json:"totalBills"`
	BillsByStatus map[string]int `json:"billsByStatus"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// Service computes and caches the dashboard summary.
type Service struct {
	users   users.Repository
	clients clients.Repository
	orders  orders.Repository
	bills   bills.Repository
	cache   *redis.Client
	now     func() time.Time
}

// NewService constructs the dashboard service.
func NewService(userRepo users.Repository, clientRepo clients.Repository, orderRepo orders.Repository, billRepo bills.Repository, cache *redis.Client) *Service {
	return &Service{
		users:   userRepo,
		clients: clientRepo,
		orders:  orderRepo,
		bills:   billRepo,
		cache:   cache,
		now:     time.Now,
	}
}

// Summary returns the cached aggregate, recomputing on a miss.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, CacheKey).Bytes()
		if err == nil {
			var cached Summary
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return &cached, nil
			}
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the summary from all four stores concurrently and
// rewrites the cache.
func (s *Service) Refresh(ctx context.Context) (*Summary, error) {
	var (
		userList   []users.User
		clientList []clients.Client
		orderList  []orders.Order
		billList   []bills.Bill
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userList, err = s.users.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clientList, err = s.clients.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orderList, err = s.orders.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		billList, err = s.bills.Load(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := s.build(userList, clientList, orderList, billList)

	if s.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, CacheKey, raw, CacheTTL).Err(); err != nil {
				return summary, fmt.Errorf("%w: cache dashboard summary: %v", shared.ErrPersistence, err)
			}
		}
	}
	return summary, nil
}

func (s *Service) build(userList []users.User, clientList []clients.Client, orderList []orders.Order, billList []bills.Bill) *Summary {
	summary := &Summary{
		OrdersByStatus: make(map[string]int),
		BillsByStatus:  make(map[string]int),
		TotalClients:   len(clientList),
		GeneratedAt:    s.now(),
	}

	for _, u := range userList {
		if u.Role == shared.RoleSalesman {
			summary.TotalSalesmen++
			if !u.IsApproved {
				summary.PendingSignups++
			}
		}
	}

	for _, o := range orderList {
		if o.Deleted {
			continue
		}
		summary.TotalOrders++
		summary.OrdersByStatus[string(o.Status)]++
		if o.Status == orders.StatusApproved || o.Status == orders.StatusCompleted {
			if p := o.CurrentPricing(); p != nil {
				summary.Revenue += p.Total
			}
		}
	}
	summary.RevenueDisplay = shared.FormatINR(summary.Revenue)

	summary.TotalBills = len(billList)
	for _, b := range billList {
		summary.BillsByStatus[string(b.Status)]++
	}
	return summary
}

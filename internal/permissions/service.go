package permissions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wims-erp/wims/internal/shared"
)

// RequestType names the action a salesman is asking to perform.
type RequestType string

const (
	TypeLogin           RequestType = "login"
	TypeOrderEdit       RequestType = "order_edit"
	TypePriceAdjustment RequestType = "price_adjustment"
)

// Status tracks a permission request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is one ask from a salesman to an admin. Requests are held in
// memory only; a restart clears the queue.
type Request struct {
	ID            string      `json:"id"`
	Type          RequestType `json:"type"`
	RequesterID   string      `json:"requesterId"`
	RequesterName string      `json:"requesterName"`
	TargetID      string      `json:"targetId,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Status        Status      `json:"status"`
	ResolvedBy    string      `json:"resolvedBy,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	ResolvedAt    *time.Time  `json:"resolvedAt,omitempty"`
}

// Service holds the live permission queue.
type Service struct {
	mu       sync.Mutex
	requests map[string]*Request
	now      func() time.Time
}

// NewService constructs an empty permission queue.
func NewService() *Service {
	return &Service{
		requests: make(map[string]*Request),
		now:      time.Now,
	}
}

func validType(t RequestType) bool {
	switch t {
	case TypeLogin, TypeOrderEdit, TypePriceAdjustment:
		return true
	}
	return false
}

// Submit files a new request. A requester may hold at most one pending
// request per type and target.
func (s *Service) Submit(ctx context.Context, t RequestType, requester shared.SessionUser, targetID, reason string) (*Request, error) {
	if !validType(t) {
		return nil, fmt.Errorf("%w: unknown permission type %q", shared.ErrValidation, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.requests {
		if existing.Status == StatusPending &&
			existing.RequesterID == requester.ID &&
			existing.Type == t &&
			existing.TargetID == targetID {
			return nil, fmt.Errorf("%w: a pending %s request already exists", shared.ErrDuplicate, t)
		}
	}

	req := &Request{
		ID:            uuid.NewString(),
		Type:          t,
		RequesterID:   requester.ID,
		RequesterName: requester.Name,
		TargetID:      targetID,
		Reason:        reason,
		Status:        StatusPending,
		CreatedAt:     s.now(),
	}
	s.requests[req.ID] = req

	out := *req
	return &out, nil
}

// Resolve approves or denies a pending request.
func (s *Service) Resolve(ctx context.Context, id string, approve bool, resolvedBy string) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: permission request %s", shared.ErrNotFound, id)
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: request already %s", shared.ErrInvalidStatus, req.Status)
	}

	now := s.now()
	if approve {
		req.Status = StatusApproved
	} else {
		req.Status = StatusRejected
	}
	req.ResolvedBy = resolvedBy
	req.ResolvedAt = &now

	out := *req
	return &out, nil
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: permission request %s", shared.ErrNotFound, id)
	}
	out := *req
	return &out, nil
}

// List returns requests, newest first. requesterID narrows to one
// salesman; pendingOnly drops resolved entries.
func (s *Service) List(ctx context.Context, requesterID string, pendingOnly bool) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, 0, len(s.requests))
	for _, req := range s.requests {
		if requesterID != "" && req.RequesterID != requesterID {
			continue
		}
		if pendingOnly && req.Status != StatusPending {
			continue
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Consume checks for an approved request matching the requester, type
// and target, and removes it so the grant is single-use.
func (s *Service) Consume(ctx context.Context, requesterID string, t RequestType, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, req := range s.requests {
		if req.Status == StatusApproved &&
			req.RequesterID == requesterID &&
			req.Type == t &&
			req.TargetID == targetID {
			delete(s.requests, id)
			return true
		}
	}
	return false
}

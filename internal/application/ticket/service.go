package ticket

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/go-pots-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateTicketRequest) (*domain.Ticket, error)
	// Get returns the ticket when the caller owns it or is an admin.
	Get(ctx context.Context, callerID, callerRole, ticketID string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, callerID, callerRole, userID string) ([]domain.Ticket, error)
	// ListAll is the admin desk view, most recently touched first.
	ListAll(ctx context.Context, callerRole string) ([]domain.Ticket, error)
	AddMessage(ctx context.Context, callerID, callerRole, ticketID string, req domain.TicketMessageRequest) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, callerRole, ticketID string, req domain.TicketStatusRequest) (*domain.Ticket, error)
}

type ticketStore interface {
	Put(ctx context.Context, t *domain.Ticket) error
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	Update(ctx context.Context, ticketID string, updates map[string]interface{}) error
}

type service struct {
	tickets ticketStore
	clk     clock.Clock
}

func NewService(tickets ticketStore, clk clock.Clock) Service {
	return &service{tickets: tickets, clk: clk}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateTicketRequest) (*domain.Ticket, error) {
	now := s.clk.Now()
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	t := &domain.Ticket{
		TicketID:    id.New(),
		UserID:      userID,
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    priority,
		Status:      domain.TicketNew,
		Messages: []domain.TicketMessage{{
			MessageID: id.New(),
			UserID:    userID,
			Content:   req.Description,
			CreatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tickets.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, callerID, callerRole, ticketID string) (*domain.Ticket, error) {
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := authorize(t, callerID, callerRole); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) ListByUser(ctx context.Context, callerID, callerRole, userID string) ([]domain.Ticket, error) {
	if callerID != userID && callerRole != domain.RoleAdmin {
		return nil, fmt.Errorf("cannot list another user's tickets: %w", domain.ErrForbidden)
	}
	return s.tickets.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context, callerRole string) ([]domain.Ticket, error) {
	if callerRole != domain.RoleAdmin {
		return nil, fmt.Errorf("ticket desk is admin only: %w", domain.ErrForbidden)
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].UpdatedAt.After(tickets[j].UpdatedAt)
	})
	return tickets, nil
}

func (s *service) AddMessage(ctx context.Context, callerID, callerRole, ticketID string, req domain.TicketMessageRequest) (*domain.Ticket, error) {
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := authorize(t, callerID, callerRole); err != nil {
		return nil, err
	}
	if t.Status == domain.TicketClosed {
		return nil, fmt.Errorf("ticket is closed: %w", domain.ErrConflict)
	}
	now := s.clk.Now()
	t.Messages = append(t.Messages, domain.TicketMessage{
		MessageID: id.New(),
		UserID:    callerID,
		Content:   req.Content,
		FromStaff: callerRole == domain.RoleAdmin,
		CreatedAt: now,
	})
	// a staff reply moves a fresh ticket into progress
	if t.Status == domain.TicketNew && callerRole == domain.RoleAdmin {
		t.Status = domain.TicketInProgress
	}
	t.UpdatedAt = now
	if err := s.tickets.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) UpdateStatus(ctx context.Context, callerRole, ticketID string, req domain.TicketStatusRequest) (*domain.Ticket, error) {
	if callerRole != domain.RoleAdmin {
		return nil, fmt.Errorf("status changes are admin only: %w", domain.ErrForbidden)
	}
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	err = s.tickets.Update(ctx, ticketID, map[string]interface{}{
		"status":     req.Status,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	t.Status = req.Status
	t.UpdatedAt = now
	return t, nil
}

func authorize(t *domain.Ticket, callerID, callerRole string) error {
	if t.UserID != callerID && callerRole != domain.RoleAdmin {
		return fmt.Errorf("ticket belongs to another user: %w", domain.ErrForbidden)
	}
	return nil
}

package tickets

import (
	"context"

	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
)

// TicketDBLayer is the durable ticket store. TryConsumeUse is the only
// mutation after issuance and the store alone is responsible for making it
// atomic per ticket id.
type TicketDBLayer interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) error
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	GetTicketsByHolder(ctx context.Context, holderID string) ([]models.Ticket, error)
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	TryConsumeUse(ctx context.Context, id string) (int, error)
}

// HolderVerifier confirms a holder identifier against the external registry.
type HolderVerifier interface {
	VerifyHolder(ctx context.Context, holderID string) error
}

// EventPublisher streams issuance and turnstile decisions to downstream
// collaborators. Publishing is best-effort; failures never fail the request.
type EventPublisher interface {
	PublishTicketIssued(ticket models.Ticket) error
	PublishAccessEvent(event models.AccessEvent) error
}

type TicketService struct {
	DB        TicketDBLayer
	Verifier  HolderVerifier
	Publisher EventPublisher
	Logger    *logger.Logger
}

func NewTicketService(db TicketDBLayer, verifier HolderVerifier, log *logger.Logger) *TicketService {
	return &TicketService{DB: db, Verifier: verifier, Logger: log}
}

func (s *TicketService) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return s.DB.GetTicketByID(ctx, id)
}

func (s *TicketService) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	return s.DB.ListTickets(ctx)
}

func (s *TicketService) GetTicketsByHolder(ctx context.Context, holderID string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByHolder(ctx, holderID)
}

package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-park-access/internal/models"
	"ms-park-access/internal/tickets/db"
	"ms-park-access/internal/tickets/qrgen"
)

var (
	// ErrInvalidRequest means the issuance request failed input validation.
	ErrInvalidRequest = errors.New("invalid issuance request")
	// ErrIssuanceConflict means id generation collided twice in a row, which
	// should not happen with a healthy clock and entropy source.
	ErrIssuanceConflict = errors.New("ticket id collision after retry")
)

// IssueTicket verifies the holder against the registry, applies the class
// policy and persists the new ticket. Nothing is written unless the registry
// confirms the holder exists (fail closed).
func (s *TicketService) IssueTicket(ctx context.Context, req models.IssueRequest) (*models.Ticket, error) {
	if req.HolderID == "" || !req.Class.Valid() {
		return nil, ErrInvalidRequest
	}
	if req.Class == models.ClassLimited && req.Quota <= 0 {
		return nil, fmt.Errorf("limited class requires a positive quota: %w", ErrInvalidRequest)
	}

	if err := s.Verifier.VerifyHolder(ctx, req.HolderID); err != nil {
		return nil, err
	}

	issuedAt := time.Now()
	ticket := models.Ticket{
		HolderID: req.HolderID,
		Class:    req.Class,
		IssuedAt: issuedAt,
	}

	switch req.Class {
	case models.ClassLimited:
		quota := req.Quota
		ticket.RemainingUses = &quota
	case models.ClassDaily:
		until := issuedAt.AddDate(0, 0, 1)
		ticket.ValidUntil = &until
	case models.ClassAnnual:
		until := issuedAt.AddDate(0, 0, 365)
		ticket.ValidUntil = &until
	}

	// One retry on id collision; a second collision is a conflict.
	for attempt := 0; attempt < 2; attempt++ {
		ticket.ID = newTicketID()

		qr, err := qrgen.Generate(ticket.ID, ticket.HolderID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		ticket.QRCode = qr

		err = s.DB.CreateTicket(ctx, ticket)
		if err == nil {
			s.Logger.LogTicket("ISSUE", ticket.ID, fmt.Sprintf("issued %s ticket for holder %s", ticket.Class, ticket.HolderID))
			s.publishIssued(ticket)
			return &ticket, nil
		}
		if !errors.Is(err, db.ErrDuplicateID) {
			s.Logger.Error("TICKET", fmt.Sprintf("Failed to create ticket: %v", err))
			return nil, err
		}
		s.Logger.Warn("TICKET", fmt.Sprintf("Ticket id collision on %s, regenerating", ticket.ID))
	}

	return nil, ErrIssuanceConflict
}

func (s *TicketService) publishIssued(ticket models.Ticket) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishTicketIssued(ticket); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish ticket-issued event for %s: %v", ticket.ID, err))
	}
}

// newTicketID builds a time-based id with per-process entropy, so uniqueness
// needs no coordination between issuers.
func newTicketID() string {
	return fmt.Sprintf("TICKET-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

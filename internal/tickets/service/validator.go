package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-park-access/internal/models"
	"ms-park-access/internal/tickets/db"
)

const (
	ReasonNoRemainingUses = "no remaining uses"
	ReasonExpired         = "expired"
)

// ValidateTicket decides whether the presented ticket grants access right
// now. Limited tickets consume one use on an allowed outcome; daily and
// annual tickets are never mutated. An unknown id surfaces as db.ErrNotFound,
// which is a validation failure rather than a system error.
func (s *TicketService) ValidateTicket(ctx context.Context, id string, now time.Time) (*models.ValidationResult, error) {
	ticket, err := s.DB.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &models.ValidationResult{HolderID: ticket.HolderID}

	switch ticket.Class {
	case models.ClassLimited:
		remaining, err := s.DB.TryConsumeUse(ctx, id)
		switch {
		case errors.Is(err, db.ErrExhausted):
			result.Reason = ReasonNoRemainingUses
		case err != nil:
			return nil, err
		default:
			result.Allowed = true
			result.Reason = fmt.Sprintf("access granted, %d uses remaining", remaining)
			result.RemainingUses = &remaining
		}

	case models.ClassDaily, models.ClassAnnual:
		// Expiry is decided on parsed instants, never on string comparison.
		if ticket.ValidUntil != nil && !now.After(*ticket.ValidUntil) {
			result.Allowed = true
			result.Reason = "access granted"
		} else {
			result.Reason = ReasonExpired
		}

	default:
		return nil, fmt.Errorf("ticket %s has unknown class %q", id, ticket.Class)
	}

	s.Logger.LogValidation(id, result.Allowed, result.Reason)
	s.publishAccessEvent(id, result, now)
	return result, nil
}

func (s *TicketService) publishAccessEvent(ticketID string, result *models.ValidationResult, at time.Time) {
	if s.Publisher == nil {
		return
	}
	event := models.AccessEvent{
		TicketID: ticketID,
		HolderID: result.HolderID,
		Allowed:  result.Allowed,
		Reason:   result.Reason,
		At:       at,
	}
	if err := s.Publisher.PublishAccessEvent(event); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish access event for %s: %v", ticketID, err))
	}
}

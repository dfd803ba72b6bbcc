package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"ms-park-access/internal/models"
)

var (
	// ErrDuplicateID means a ticket with the same id already exists.
	ErrDuplicateID = errors.New("ticket id already exists")
	// ErrNotFound means no ticket with the given id is stored.
	ErrNotFound = errors.New("ticket not found")
	// ErrExhausted means a limited ticket has no remaining uses.
	ErrExhausted = errors.New("ticket has no remaining uses")
	// ErrWrongClass means TryConsumeUse was called on a non-limited ticket.
	ErrWrongClass = errors.New("ticket class has no use quota")
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	if err != nil {
		// SQLite reports pk collisions as unique-constraint violations.
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (d *DB) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketsByHolder returns all tickets belonging to a holder. Holders
// without tickets get an empty slice, not an error.
func (d *DB) GetTicketsByHolder(ctx context.Context, holderID string) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0)
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("holder_id = ?", holderID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0)
	err := d.Bun.NewSelect().
		Model(&tickets).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// TryConsumeUse atomically decrements the remaining uses of a limited ticket
// and returns the post-decrement count. It reports ErrExhausted once the
// count reaches zero and ErrWrongClass for daily/annual tickets, leaving the
// row untouched in both cases.
//
// The decrement is a compare-and-swap: the conditional UPDATE only lands when
// remaining_uses still holds the value we read. Losing the race means another
// validation committed a strictly smaller count, so re-reading converges and
// the loop terminates; two callers can never both win the last use.
func (d *DB) TryConsumeUse(ctx context.Context, id string) (int, error) {
	for {
		ticket, err := d.GetTicketByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if ticket.Class != models.ClassLimited {
			return 0, ErrWrongClass
		}
		if ticket.RemainingUses == nil || *ticket.RemainingUses <= 0 {
			return 0, ErrExhausted
		}

		next := *ticket.RemainingUses - 1
		res, err := d.Bun.NewUpdate().
			Model((*models.Ticket)(nil)).
			Set("remaining_uses = ?", next).
			Where("id = ?", id).
			Where("remaining_uses = ?", *ticket.RemainingUses).
			Exec(ctx)
		if err != nil {
			return 0, err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if rows == 1 {
			return next, nil
		}
		// Lost the race against a concurrent validation; retry from a fresh read.
	}
}

package tickets_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-park-access/internal/models"
	"ms-park-access/internal/tickets/db"
	tickets "ms-park-access/internal/tickets/service"
)

func seedTicket(t *testing.T, store *MockTicketDB, ticket models.Ticket) {
	t.Helper()
	require.NoError(t, store.CreateTicket(context.Background(), ticket))
}

func TestValidateTicket_LimitedConsumesQuota(t *testing.T) {
	store := NewMockTicketDB()
	service := newTestService(store, NewMockVerifier("111"))

	uses := 1
	seedTicket(t, store, models.Ticket{
		ID:            "TICKET-1",
		HolderID:      "111",
		Class:         models.ClassLimited,
		IssuedAt:      time.Now(),
		RemainingUses: &uses,
	})

	result, err := service.ValidateTicket(context.Background(), "TICKET-1", time.Now())
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, "111", result.HolderID)
	require.NotNil(t, result.RemainingUses)
	assert.Equal(t, 0, *result.RemainingUses)
	assert.Contains(t, result.Reason, "0 uses remaining")

	// Second presentation: quota is gone.
	result, err = service.ValidateTicket(context.Background(), "TICKET-1", time.Now())
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, tickets.ReasonNoRemainingUses, result.Reason)
	assert.Equal(t, "111", result.HolderID)
	assert.Nil(t, result.RemainingUses)
}

func TestValidateTicket_DailyWindow(t *testing.T) {
	store := NewMockTicketDB()
	service := newTestService(store, NewMockVerifier("111"))

	issuedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	until := issuedAt.AddDate(0, 0, 1)
	seedTicket(t, store, models.Ticket{
		ID:         "TICKET-1",
		HolderID:   "111",
		Class:      models.ClassDaily,
		IssuedAt:   issuedAt,
		ValidUntil: &until,
	})

	// 23 hours in: still valid.
	result, err := service.ValidateTicket(context.Background(), "TICKET-1", issuedAt.Add(23*time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	// 25 hours in: expired.
	result, err = service.ValidateTicket(context.Background(), "TICKET-1", issuedAt.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, tickets.ReasonExpired, result.Reason)
	assert.Equal(t, "111", result.HolderID)

	// Validation never mutates a daily ticket.
	stored, err := store.GetTicketByID(context.Background(), "TICKET-1")
	require.NoError(t, err)
	assert.Equal(t, until, *stored.ValidUntil)
	assert.Nil(t, stored.RemainingUses)
}

func TestValidateTicket_DailyBoundaryInclusive(t *testing.T) {
	store := NewMockTicketDB()
	service := newTestService(store, NewMockVerifier("111"))

	issuedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	until := issuedAt.AddDate(0, 0, 1)
	seedTicket(t, store, models.Ticket{
		ID:         "TICKET-1",
		HolderID:   "111",
		Class:      models.ClassDaily,
		IssuedAt:   issuedAt,
		ValidUntil: &until,
	})

	// now == validUntil still grants access.
	result, err := service.ValidateTicket(context.Background(), "TICKET-1", until)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestValidateTicket_Annual(t *testing.T) {
	store := NewMockTicketDB()
	service := newTestService(store, NewMockVerifier("111"))

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	until := issuedAt.AddDate(0, 0, 365)
	seedTicket(t, store, models.Ticket{
		ID:         "TICKET-1",
		HolderID:   "111",
		Class:      models.ClassAnnual,
		IssuedAt:   issuedAt,
		ValidUntil: &until,
	})

	result, err := service.ValidateTicket(context.Background(), "TICKET-1", issuedAt.AddDate(0, 0, 200))
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = service.ValidateTicket(context.Background(), "TICKET-1", issuedAt.AddDate(0, 0, 366))
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, tickets.ReasonExpired, result.Reason)
}

func TestValidateTicket_UnknownID(t *testing.T) {
	store := NewMockTicketDB()
	service := newTestService(store, NewMockVerifier("111"))

	_, err := service.ValidateTicket(context.Background(), "no-such-ticket", time.Now())
	assert.ErrorIs(t, err, db.ErrNotFound)
}

// Ten simultaneous presentations of a ticket with one remaining use: exactly
// one turnstile opens.
func TestValidateTicket_ConcurrentLastUse(t *testing.T) {
	store := NewMockTicketDB()
	service := newTestService(store, NewMockVerifier("111"))

	uses := 1
	seedTicket(t, store, models.Ticket{
		ID:            "TICKET-1",
		HolderID:      "111",
		Class:         models.ClassLimited,
		IssuedAt:      time.Now(),
		RemainingUses: &uses,
	})

	const callers = 10

	var wg sync.WaitGroup
	allowed := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.ValidateTicket(context.Background(), "TICKET-1", time.Now())
			if err == nil {
				allowed <- result.Allowed
			}
		}()
	}
	wg.Wait()
	close(allowed)

	granted, denied := 0, 0
	for ok := range allowed {
		if ok {
			granted++
		} else {
			denied++
		}
	}
	assert.Equal(t, 1, granted)
	assert.Equal(t, callers-1, denied)
}

func TestValidateTicket_PublishesAccessEvents(t *testing.T) {
	store := NewMockTicketDB()
	publisher := &MockPublisher{}
	service := newTestService(store, NewMockVerifier("111"))
	service.Publisher = publisher

	uses := 1
	seedTicket(t, store, models.Ticket{
		ID:            "TICKET-1",
		HolderID:      "111",
		Class:         models.ClassLimited,
		IssuedAt:      time.Now(),
		RemainingUses: &uses,
	})

	_, err := service.ValidateTicket(context.Background(), "TICKET-1", time.Now())
	require.NoError(t, err)
	_, err = service.ValidateTicket(context.Background(), "TICKET-1", time.Now())
	require.NoError(t, err)

	require.Len(t, publisher.access, 2)
	assert.True(t, publisher.access[0].Allowed)
	assert.False(t, publisher.access[1].Allowed)
	assert.Equal(t, "111", publisher.access[1].HolderID)
}

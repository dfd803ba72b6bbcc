package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-park-access/internal/database"
	"ms-park-access/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	// A single connection serializes writers, matching the pool cap
	// database.Open applies to the file database the services run on.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	err = bunDB.ResetModel(context.Background(), (*models.Ticket)(nil))
	require.NoError(t, err)

	t.Cleanup(func() { bunDB.Close() })

	return &DB{Bun: bunDB}
}

func intPtr(v int) *int { return &v }

func limitedTicket(id, holderID string, uses int) models.Ticket {
	return models.Ticket{
		ID:            id,
		HolderID:      holderID,
		Class:         models.ClassLimited,
		IssuedAt:      time.Now(),
		RemainingUses: intPtr(uses),
	}
}

func TestCreateAndGetTicket(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	until := time.Now().AddDate(0, 0, 1)
	ticket := models.Ticket{
		ID:         "TICKET-1",
		HolderID:   "111",
		Class:      models.ClassDaily,
		IssuedAt:   time.Now(),
		ValidUntil: &until,
	}

	require.NoError(t, store.CreateTicket(ctx, ticket))

	got, err := store.GetTicketByID(ctx, "TICKET-1")
	require.NoError(t, err)
	assert.Equal(t, "111", got.HolderID)
	assert.Equal(t, models.ClassDaily, got.Class)
	require.NotNil(t, got.ValidUntil)
	assert.Nil(t, got.RemainingUses)
}

func TestCreateTicket_DuplicateID(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-1", "111", 5)))

	err := store.CreateTicket(ctx, limitedTicket("TICKET-1", "222", 3))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestGetTicketByID_NotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.GetTicketByID(context.Background(), "no-such-ticket")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTicketsByHolder(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-1", "111", 5)))
	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-2", "111", 2)))
	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-3", "222", 1)))

	tickets, err := store.GetTicketsByHolder(ctx, "111")
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	// Holders without tickets get an empty list, not an error.
	tickets, err = store.GetTicketsByHolder(ctx, "999")
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestListTickets(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-1", "111", 5)))
	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-2", "222", 1)))

	tickets, err := store.ListTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestTryConsumeUse_CountsDown(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-1", "111", 3)))

	for want := 2; want >= 0; want-- {
		remaining, err := store.TryConsumeUse(ctx, "TICKET-1")
		require.NoError(t, err)
		assert.Equal(t, want, remaining)
	}

	_, err := store.TryConsumeUse(ctx, "TICKET-1")
	assert.ErrorIs(t, err, ErrExhausted)

	// The denied attempt must not have touched the row.
	got, err := store.GetTicketByID(ctx, "TICKET-1")
	require.NoError(t, err)
	require.NotNil(t, got.RemainingUses)
	assert.Equal(t, 0, *got.RemainingUses)
}

func TestTryConsumeUse_WrongClass(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	until := time.Now().AddDate(0, 0, 365)
	require.NoError(t, store.CreateTicket(ctx, models.Ticket{
		ID:         "TICKET-1",
		HolderID:   "111",
		Class:      models.ClassAnnual,
		IssuedAt:   time.Now(),
		ValidUntil: &until,
	}))

	_, err := store.TryConsumeUse(ctx, "TICKET-1")
	assert.ErrorIs(t, err, ErrWrongClass)
}

func TestTryConsumeUse_NotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.TryConsumeUse(context.Background(), "no-such-ticket")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Ten concurrent validations against a quota of five must produce exactly
// five successes with distinct counts and five exhausted outcomes.
func TestTryConsumeUse_Concurrent(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	const quota = 5
	const callers = 10

	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-1", "111", quota)))

	var wg sync.WaitGroup
	results := make(chan int, callers)
	failures := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			remaining, err := store.TryConsumeUse(ctx, "TICKET-1")
			if err != nil {
				failures <- err
				return
			}
			results <- remaining
		}()
	}
	wg.Wait()
	close(results)
	close(failures)

	seen := make(map[int]bool)
	for remaining := range results {
		assert.False(t, seen[remaining], "remaining count %d handed out twice", remaining)
		seen[remaining] = true
	}
	assert.Len(t, seen, quota)

	exhausted := 0
	for err := range failures {
		assert.ErrorIs(t, err, ErrExhausted)
		exhausted++
	}
	assert.Equal(t, callers-quota, exhausted)

	got, err := store.GetTicketByID(ctx, "TICKET-1")
	require.NoError(t, err)
	require.NotNil(t, got.RemainingUses)
	assert.Equal(t, 0, *got.RemainingUses)
}

// Same contention scenario, but through database.Open against a real file
// database, so the connection pool the services run on is what gets
// exercised. Losers must see Exhausted, never a busy-database error.
func TestTryConsumeUse_ConcurrentLastUseFileDB(t *testing.T) {
	bunDB, err := database.Open(filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	require.NoError(t, database.CreateSchema(ctx, bunDB, (*models.Ticket)(nil)))

	store := &DB{Bun: bunDB}
	require.NoError(t, store.CreateTicket(ctx, limitedTicket("TICKET-1", "111", 1)))

	const callers = 10
	var wg sync.WaitGroup
	granted := make(chan int, callers)
	denied := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			remaining, err := store.TryConsumeUse(ctx, "TICKET-1")
			if err != nil {
				denied <- err
				return
			}
			granted <- remaining
		}()
	}
	wg.Wait()
	close(granted)
	close(denied)

	wins := 0
	for remaining := range granted {
		assert.Equal(t, 0, remaining)
		wins++
	}
	assert.Equal(t, 1, wins)

	exhausted := 0
	for err := range denied {
		assert.ErrorIs(t, err, ErrExhausted)
		exhausted++
	}
	assert.Equal(t, callers-1, exhausted)
}

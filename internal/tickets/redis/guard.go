package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-park-access/internal/logger"
)

// ScanGuard debounces repeat turnstile scans of the same ticket. A ticket id
// that was scanned inside the TTL window is rejected before any policy runs.
// The guard is advisory: redis failures fail open so the store-level quota
// logic stays authoritative.
type ScanGuard struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewScanGuard(client *redis.Client, ttl time.Duration, log *logger.Logger) *ScanGuard {
	return &ScanGuard{Client: client, TTL: ttl, Logger: log}
}

// FirstScan reports whether this is the first scan of the ticket inside the
// guard window, claiming the window when it is.
func (g *ScanGuard) FirstScan(ctx context.Context, ticketID string) bool {
	key := "ticket_scan:" + ticketID

	ok, err := g.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.TTL).Result()
	if err != nil {
		g.Logger.Error("REDIS", fmt.Sprintf("Scan guard unavailable for %s, failing open: %v", ticketID, err))
		return true
	}
	if !ok {
		g.Logger.Warn("REDIS", fmt.Sprintf("Duplicate scan of %s inside guard window", ticketID))
	}
	return ok
}

// Release drops the guard window for a ticket, e.g. after an operator
// override at the gate.
func (g *ScanGuard) Release(ctx context.Context, ticketID string) error {
	return g.Client.Del(ctx, "ticket_scan:"+ticketID).Err()
}

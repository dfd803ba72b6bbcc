package models

import "time"

// AccessEvent is streamed to Kafka for every validation decision so the
// queueing service can react to turnstile activity.
type AccessEvent struct {
	TicketID string    `json:"ticket_id"`
	HolderID string    `json:"holder_id"`
	Allowed  bool      `json:"allowed"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}

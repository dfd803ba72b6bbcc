package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TicketClass determines which validation policy applies to a ticket.
// It is fixed at issuance and never changes afterwards.
type TicketClass string

const (
	ClassLimited TicketClass = "limited"
	ClassDaily   TicketClass = "daily"
	ClassAnnual  TicketClass = "annual"
)

// Valid reports whether the class is one of the three known ticket classes.
func (c TicketClass) Valid() bool {
	switch c {
	case ClassLimited, ClassDaily, ClassAnnual:
		return true
	}
	return false
}

// Ticket is the one persistent entity of the access system. Exactly one of
// ValidUntil / RemainingUses is set, depending on Class: Limited tickets carry
// a use quota and no expiry, Daily and Annual tickets carry an expiry and no
// quota. Rows are immutable after issuance except for remaining_uses, which
// only ever decreases.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID            string      `bun:"id,pk" json:"id"`
	HolderID      string      `bun:"holder_id,notnull" json:"holder_id"`
	Class         TicketClass `bun:"class,notnull" json:"class"`
	IssuedAt      time.Time   `bun:"issued_at,notnull" json:"issued_at"`
	ValidUntil    *time.Time  `bun:"valid_until,nullzero" json:"valid_until,omitempty"`
	RemainingUses *int        `bun:"remaining_uses,nullzero" json:"remaining_uses,omitempty"`
	QRCode        []byte      `bun:"qr_code" json:"qr_code,omitempty"`
}

// IssueRequest is the issuance endpoint body. Quota is only meaningful for
// the Limited class.
type IssueRequest struct {
	HolderID string      `json:"holder_id"`
	Class    TicketClass `json:"class"`
	Quota    int         `json:"quota,omitempty"`
}

// ValidationResult is returned for every validation attempt, allowed or not.
// HolderID is always populated so downstream collaborators (queueing, audit)
// can attribute the turnstile event.
type ValidationResult struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason"`
	HolderID      string `json:"holder_id"`
	RemainingUses *int   `json:"remaining_uses,omitempty"`
}

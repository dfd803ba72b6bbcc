package models

import "github.com/uptrace/bun"

// Attraction is a catalog entry managed by the attraction service. It carries
// no access policy; the ticket service never reads it.
type Attraction struct {
	bun.BaseModel `bun:"table:attractions"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	Name           string `bun:"name,notnull" json:"name"`
	Description    string `bun:"description" json:"description,omitempty"`
	Capacity       int    `bun:"capacity,notnull" json:"capacity"`
	AvgRideMinutes int    `bun:"avg_ride_minutes,notnull" json:"avg_ride_minutes"`
	Status         string `bun:"status,notnull,default:'operational'" json:"status"`
}

// AttractionUpdate carries a partial update; nil fields keep the stored value.
type AttractionUpdate struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	Capacity       *int    `json:"capacity,omitempty"`
	AvgRideMinutes *int    `json:"avg_ride_minutes,omitempty"`
	Status         *string `json:"status,omitempty"`
}

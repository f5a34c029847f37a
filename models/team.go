package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	TenantID  int       `json:"tenant_id" db:"tenant_id"`
	GroupID   *int      `json:"group_id,omitempty" db:"group_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Maintained by the standings recalculator only.
	TeamAggregates

	Players []Player `json:"players,omitempty" db:"-"`
}

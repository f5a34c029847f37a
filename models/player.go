package models

import "time"

type Player struct {
	ID          int       `json:"id" db:"id"`
	TenantID    int       `json:"tenant_id" db:"tenant_id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	Name        string    `json:"name" db:"name"`
	ShirtNumber *int      `json:"shirt_number,omitempty" db:"shirt_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

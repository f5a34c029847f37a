package models

import "time"

// Group partitions the teams of a tenant for fixtures and standings.
type Group struct {
	ID        int       `json:"id" db:"id"`
	TenantID  int       `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

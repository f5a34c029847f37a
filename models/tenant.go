package models

import "time"

// Tenant is a customer organisation. Every league record belongs to exactly one tenant.
type Tenant struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package models

import "time"

const BackupVersion = 1

// Backup is the JSON document produced by export and consumed by restore.
type Backup struct {
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Tenants   []Tenant     `json:"tenants"`
	Groups    []Group      `json:"groups"`
	Teams     []Team       `json:"teams"`
	Players   []Player     `json:"players"`
	Matches   []Match      `json:"matches"`
	Events    []MatchEvent `json:"events"`
}

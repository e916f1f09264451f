package models

import (
	"time"
)

// CacheEntry is a short-lived counter or value kept in the primary database.
// Rate limiting and login lockout counters live here.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     []byte
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

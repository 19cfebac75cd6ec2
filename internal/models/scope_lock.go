package models

import "time"

// ScopeLock is a sentinel row per ordering space. Writers touching the root
// scope of a kind update it first, which holds a row lock until they commit.
type ScopeLock struct {
	Name       string    `gorm:"primaryKey;size:64" json:"name"`
	AcquiredAt time.Time `gorm:"not null" json:"acquiredAt"`
}

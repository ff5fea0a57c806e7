// Package staterepo stores state store entries (order documents and
// validation records) in PostgreSQL, one row per store name and key.
package staterepo

import "time"

// StateEntryDTO is one key of one named store.
type StateEntryDTO struct {
	StoreName string `gorm:"primaryKey;size:128"`
	Key       string `gorm:"primaryKey;size:256"`
	Value     []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (StateEntryDTO) TableName() string {
	return "state_entries"
}

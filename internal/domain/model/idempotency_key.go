package model

import "time"

// IdempotencyKey maps a caller-supplied key to the intent it created.
// Rows are write-once and never remapped.
type IdempotencyKey struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	IntentID  string    `gorm:"column:intent_id;size:36;not null" json:"intent_id"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

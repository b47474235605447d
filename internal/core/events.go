package core

import "time"

// Change operations reported after a successful table write.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// TableChanged describes one committed write to the row store.
type TableChanged struct {
	Op      string    `json:"op"`
	BatchID string    `json:"batch_id"`
	At      time.Time `json:"at"`
}

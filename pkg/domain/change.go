package domain

import "time"

// Action describes the type of mutation applied to a stored record.
type Action string

const (
	// ActionCreate indicates a record was written for the first time.
	ActionCreate Action = "create"
	// ActionUpdate indicates an existing record was overwritten.
	ActionUpdate Action = "update"
)

// Change describes one record write observed by a store. Before is nil for
// creates.
type Change struct {
	Entity EntityType `json:"entity"`
	Action Action     `json:"action"`
	ID     Identity   `json:"id"`
	Before Record     `json:"before,omitempty"`
	After  Record     `json:"after"`
	At     time.Time  `json:"at"`
}

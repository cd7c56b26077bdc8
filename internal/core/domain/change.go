package domain

import "time"

type EntityKind string

const (
	KindItem     EntityKind = "item"
	KindCategory EntityKind = "category"
)

type ChangeAction string

const (
	ActionCreated         ChangeAction = "created"
	ActionUpdated         ChangeAction = "updated"
	ActionDeleted         ChangeAction = "deleted"
	ActionAvailabilityOn  ChangeAction = "available"
	ActionAvailabilityOff ChangeAction = "unavailable"
)

// A MenuChange describes a mutation accepted by the backend.
type MenuChange struct {
	Kind       EntityKind
	Action     ChangeAction
	EntityID   int64
	Name       string
	OccurredAt time.Time
}

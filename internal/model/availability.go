package model

import (
	"github.com/google/uuid"
)

// AvailabilitySlot is one recurring weekly interval a volunteer is free.
// Slots only exist as children of a user; the full set is replaced wholesale
// on every update.
type AvailabilitySlot struct {
	ID        uuid.UUID `db:"id" json:"-"`
	UserID    uuid.UUID `db:"user_id" json:"-"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
}

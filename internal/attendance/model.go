package attendance

import "time"

// DayLayout is the calendar-date wire format of Record.Day.
const DayLayout = "2006-01-02"

// Record is one attendance event. StudentID is a logical reference into the
// student directory that this store never validates.
type Record struct {
	ID        string `json:"id"`
	StudentID int64  `json:"student_id"`
	Day       string `json:"day"`
	Present   bool   `json:"present"`
}

// Input carries the client-supplied fields of a record. Nil or empty fields
// take their defaults: today for Day, true for Present.
type Input struct {
	StudentID int64
	Day       string
	Present   *bool
}

// ListOptions provides filtering options for listing records.
type ListOptions struct {
	StudentID *int64
	Limit     int
}

// ChangeEvent is the payload published after a record is written.
type ChangeEvent struct {
	RecordID  string    `json:"record_id"`
	StudentID int64     `json:"student_id"`
	Day       string    `json:"day,omitempty"`
	Present   bool      `json:"present"`
	At        time.Time `json:"at"`
}

// Change event types.
const (
	EventCreated = "attendance.created"
	EventUpdated = "attendance.updated"
	EventDeleted = "attendance.deleted"
)

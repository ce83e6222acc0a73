package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

// Slot is one bookable calendar unit at a center. Dates are YYYY-MM-DD and
// start times HH:MM. Slots may also exist implicitly, without a row.
type Slot struct {
	ID          string
	Date        string
	StartTime   string
	CenterID    string
	IsAvailable bool
}

type Appointment struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Reason         string
	Date           string
	StartTime      string
	CenterID       string
	Status         string
	CreatedAt      time.Time
	ReminderSentAt *time.Time
}

type Admin struct {
	ID               string
	Email            string
	PasswordHash     string
	FullName         string
	Role             string
	IsActive         bool
	TwoFactorEnabled bool
	CreatedAt        time.Time
}

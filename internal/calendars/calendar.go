package calendars

import "github.com/attendbot/internal/students"

// Calendar is a subscribable feed of one student's attendance.
type Calendar struct {
	ID         string              `json:"id"`
	RollNumber students.RollNumber `json:"roll_number"`
}

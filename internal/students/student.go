package students

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type RollNumber int

type Status uint

const (
	StatusUndefined Status = iota
	StatusPresent
	StatusAbsent
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	default:
		return "Undefined"
	}
}

// ParseStatus accepts "present" or "absent" in any case.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(value) {
	case "present":
		return StatusPresent, nil
	case "absent":
		return StatusAbsent, nil
	default:
		return StatusUndefined, fmt.Errorf("%q: %w", value, ErrInvalidStatus)
	}
}

// Mark is a single attendance event.
type Mark struct {
	Time   time.Time
	Status Status
}

type Student struct {
	Name         string
	RollNumber   RollNumber
	TotalClasses int
	PresentCount int
	// History is ordered chronologically, one entry per mark.
	History []Mark
}

func (s *Student) mark(status Status, ts time.Time) {
	s.TotalClasses++
	if status == StatusPresent {
		s.PresentCount++
	}
	s.History = append(s.History, Mark{Time: ts, Status: status})
}

func (s Student) AbsentCount() int {
	return s.TotalClasses - s.PresentCount
}

// Percentage is 0 for a student without any marks.
func (s Student) Percentage() float64 {
	if s.TotalClasses == 0 {
		return 0
	}
	return float64(s.PresentCount) / float64(s.TotalClasses) * 100
}

func (s Student) clone() Student {
	s.History = slices.Clone(s.History)
	return s
}

func (s Student) Record() Record {
	return Record{
		RollNumber:   s.RollNumber,
		Name:         s.Name,
		TotalClasses: s.TotalClasses,
		Present:      s.PresentCount,
		Absent:       s.AbsentCount(),
		Percentage:   s.Percentage(),
	}
}

// Record is a summary row of a student's attendance.
type Record struct {
	RollNumber   RollNumber `json:"roll_number"`
	Name         string     `json:"name"`
	TotalClasses int        `json:"total_classes"`
	Present      int        `json:"present"`
	Absent       int        `json:"absent"`
	Percentage   float64    `json:"percentage"`
}

func (r Record) PercentageString() string {
	return fmt.Sprintf("%.2f%%", r.Percentage)
}

type Detail struct {
	Record
	History []Mark
}

type Entry struct {
	RollNumber RollNumber `json:"roll_number"`
	Name       string     `json:"name"`
}

package statistics

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/attendbot/internal/students"
)

type Service struct {
	location *time.Location
}

func NewService(location *time.Location) *Service {
	return &Service{
		location: location,
	}
}

func (s *Service) Summarize(roster []students.Student) Summary {
	summary := Summary{TotalStudents: len(roster)}
	var present, total int
	for _, student := range roster {
		if student.TotalClasses == 0 {
			continue
		}
		summary.Marked = true
		summary.SessionsHeld = max(summary.SessionsHeld, student.TotalClasses)
		if n := len(student.History); n > 0 {
			switch student.History[n-1].Status {
			case students.StatusPresent:
				summary.PresentLatest++
			case students.StatusAbsent:
				summary.AbsentLatest++
			}
		}
		present += student.PresentCount
		total += student.TotalClasses
	}
	if total > 0 {
		summary.Overall = float64(present) / float64(total) * 100
	}
	return summary
}

func (s Summary) OverallString() string {
	return fmt.Sprintf("%.2f%%", s.Overall)
}

// CalculateYear counts marks per month of year in the service's location.
func (s *Service) CalculateYear(roster []students.Student, year int) *Year {
	stats := &Year{
		Year:   year,
		Months: make([]Month, 12),
	}
	for _, student := range roster {
		present := 0
		for _, mark := range student.History {
			ts := mark.Time.In(s.location)
			if ts.Year() != year {
				continue
			}
			stats.Total++
			stats.Months[ts.Month()-1].Total++
			if mark.Status == students.StatusPresent {
				stats.Months[ts.Month()-1].Present++
				present++
			}
		}
		if present > 0 {
			stats.Students = append(stats.Students, Student{
				Name:    student.Name,
				Present: present,
			})
		}
	}
	slices.SortStableFunc(stats.Students, func(a, b Student) int {
		if a.Present != b.Present {
			return b.Present - a.Present
		}
		return strings.Compare(a.Name, b.Name)
	})
	return stats
}

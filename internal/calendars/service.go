package calendars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/attendbot/internal/students"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Roster gives locked access to the live roster.
type Roster interface {
	View(func(*students.Roster) error) error
}

type Service struct {
	store         *Store
	roster        Roster
	classDuration time.Duration
}

func NewService(
	store *Store,
	roster Roster,
	classDuration time.Duration,
) *Service {
	return &Service{
		store:         store,
		roster:        roster,
		classDuration: classDuration,
	}
}

// CreateCalendar returns the feed of a student, creating it on first use.
func (s *Service) CreateCalendar(ctx context.Context, roll students.RollNumber) (*Calendar, error) {
	if err := s.roster.View(func(r *students.Roster) error {
		if _, ok := r.Get(roll); !ok {
			return fmt.Errorf("roll number %d: %w", roll, students.ErrNotFound)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	cal, err := s.store.FindByRollNumber(ctx, roll)
	if err == nil {
		return cal, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find by roll number %d: %w", roll, err)
	}
	cal = &Calendar{
		ID:         gonanoid.Must(),
		RollNumber: roll,
	}
	if err := s.store.Insert(ctx, cal); err != nil {
		return nil, fmt.Errorf("insert calendar: %w", err)
	}
	return cal, nil
}

// WriteICal writes one event per attendance mark of the calendar's student.
func (s *Service) WriteICal(ctx context.Context, w io.Writer, id string) error {
	cal, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find by id %q: %w", id, err)
	}
	var student students.Student
	if err := s.roster.View(func(r *students.Roster) error {
		var ok bool
		student, ok = r.Get(cal.RollNumber)
		if !ok {
			return fmt.Errorf("roll number %d: %w", cal.RollNumber, students.ErrNotFound)
		}
		return nil
	}); err != nil {
		return err
	}

	icalendar := ics.NewCalendar()
	icalendar.SetMethod(ics.MethodPublish)
	icalendar.SetName(fmt.Sprintf("Attendance of %s", student.Name))
	for i, mark := range student.History {
		ievent := icalendar.AddEvent(fmt.Sprintf("%s-%d@attendbot", cal.ID, i))
		ievent.SetSummary(fmt.Sprintf("[%s] %s", strings.ToUpper(mark.Status.String()), student.Name))
		ievent.SetDescription(fmt.Sprintf("Roll number %d", student.RollNumber))
		ievent.SetDtStampTime(mark.Time)
		ievent.SetStartAt(mark.Time)
		ievent.SetEndAt(mark.Time.Add(s.classDuration))
	}
	return icalendar.SerializeTo(w)
}

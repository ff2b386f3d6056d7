package students

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/attendbot/internal/timezone"
)

// DateLayout is the layout of persisted attendance timestamps.
const DateLayout = "2006-01-02 15:04"

type Store interface {
	// Save replaces everything persisted with students.
	Save(ctx context.Context, students []Student) error
	// Load returns nil, nil when nothing was persisted yet.
	Load(ctx context.Context) ([]Student, error)
}

type encodedMark struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type encodedStudent struct {
	Name         string        `json:"name"`
	RollNumber   RollNumber    `json:"roll_number"`
	TotalClasses int           `json:"total_classes"`
	PresentCount int           `json:"present_count"`
	History      []encodedMark `json:"attendance_history"`
}

func encodeStudent(s Student, location *time.Location) encodedStudent {
	encoded := encodedStudent{
		Name:         s.Name,
		RollNumber:   s.RollNumber,
		TotalClasses: s.TotalClasses,
		PresentCount: s.PresentCount,
		History:      make([]encodedMark, len(s.History)),
	}
	for i, m := range s.History {
		encoded.History[i] = encodedMark{
			Date:   m.Time.In(location).Format(DateLayout),
			Status: m.Status.String(),
		}
	}
	return encoded
}

func (e encodedStudent) decode(location *time.Location) (*Student, error) {
	if e.TotalClasses < 0 || e.PresentCount < 0 || e.PresentCount > e.TotalClasses {
		return nil, fmt.Errorf("roll number %d: %d present of %d: %w", e.RollNumber, e.PresentCount, e.TotalClasses, ErrInvalidRecord)
	}
	s := &Student{
		Name:         e.Name,
		RollNumber:   e.RollNumber,
		TotalClasses: e.TotalClasses,
		PresentCount: e.PresentCount,
		History:      make([]Mark, 0, len(e.History)),
	}
	for _, m := range e.History {
		ts, err := time.Parse(DateLayout, m.Date)
		if err != nil {
			return nil, fmt.Errorf("roll number %d: parse date: %w", e.RollNumber, err)
		}
		status, err := ParseStatus(m.Status)
		if err != nil {
			return nil, fmt.Errorf("roll number %d: %w", e.RollNumber, err)
		}
		s.History = append(s.History, Mark{
			Time:   timezone.In(ts, location),
			Status: status,
		})
	}
	return s, nil
}

// Encode writes students as a JSON object keyed by roll number.
func Encode(w io.Writer, students []Student, location *time.Location) error {
	data := make(map[string]encodedStudent, len(students))
	for _, s := range students {
		data[strconv.Itoa(int(s.RollNumber))] = encodeStudent(s, location)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return encoder.Encode(data)
}

// Decode reads the format written by Encode. Students are sorted by roll
// number. The roll number of a student is taken from its key.
func Decode(r io.Reader, location *time.Location) ([]Student, error) {
	var data map[string]encodedStudent
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	students := make([]Student, 0, len(data))
	for key, encoded := range data {
		roll, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("roll number %q: %w", key, ErrInvalidRecord)
		}
		encoded.RollNumber = RollNumber(roll)
		s, err := encoded.decode(location)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	slices.SortFunc(students, func(a, b Student) int {
		return cmp.Compare(a.RollNumber, b.RollNumber)
	})
	return students, nil
}

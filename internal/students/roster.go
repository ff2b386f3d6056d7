package students

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"
)

var seedNames = []string{
	"Ali", "Ahmed", "Ayesha", "Fatima", "Hassan",
	"Hussain", "Zain", "Sana", "Omar", "Noor",
	"Maha", "Hana", "Karim", "Layla", "Sara",
	"Tariq", "Amira", "Jamal", "Leila", "Rashid",
}

// Roster is not safe for concurrent use.
type Roster struct {
	students map[RollNumber]*Student
	now      func() time.Time
}

type Option func(*Roster)

// WithClock sets the source of attendance timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Roster) {
		r.now = now
	}
}

func NewRoster(opts ...Option) *Roster {
	r := &Roster{
		students: make(map[RollNumber]*Student),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewSeededRoster returns a roster with twenty students, roll numbers 1 to 20.
func NewSeededRoster(opts ...Option) *Roster {
	r := NewRoster(opts...)
	for i, name := range seedNames {
		roll := RollNumber(i + 1)
		r.students[roll] = &Student{Name: name, RollNumber: roll}
	}
	return r
}

func (r *Roster) Len() int {
	return len(r.students)
}

func (r *Roster) Add(name string, roll RollNumber) error {
	if _, ok := r.students[roll]; ok {
		return fmt.Errorf("roll number %d: %w", roll, ErrDuplicateRollNumber)
	}
	r.students[roll] = &Student{Name: name, RollNumber: roll}
	return nil
}

// Get returns a copy of the student.
func (r *Roster) Get(roll RollNumber) (Student, bool) {
	s, ok := r.students[roll]
	if !ok {
		return Student{}, false
	}
	return s.clone(), true
}

// Mark records one attendance event and returns the updated student.
func (r *Roster) Mark(roll RollNumber, status string) (Student, error) {
	s, ok := r.students[roll]
	if !ok {
		return Student{}, fmt.Errorf("roll number %d: %w", roll, ErrNotFound)
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return Student{}, err
	}
	s.mark(parsed, r.now())
	return s.clone(), nil
}

// MarkAll marks every student on the roster and returns how many were marked.
func (r *Roster) MarkAll(status Status) int {
	now := r.now()
	for _, s := range r.students {
		s.mark(status, now)
	}
	return len(r.students)
}

func (r *Roster) Delete(roll RollNumber) (Student, error) {
	s, ok := r.students[roll]
	if !ok {
		return Student{}, fmt.Errorf("roll number %d: %w", roll, ErrNotFound)
	}
	delete(r.students, roll)
	return *s, nil
}

func (r *Roster) sortedRolls() []RollNumber {
	return slices.Sorted(maps.Keys(r.students))
}

// Records returns summary rows sorted by roll number.
func (r *Roster) Records() []Record {
	records := make([]Record, 0, len(r.students))
	for _, roll := range r.sortedRolls() {
		records = append(records, r.students[roll].Record())
	}
	return records
}

func (r *Roster) Detail(roll RollNumber) (Detail, error) {
	s, ok := r.students[roll]
	if !ok {
		return Detail{}, fmt.Errorf("roll number %d: %w", roll, ErrNotFound)
	}
	return Detail{
		Record:  s.Record(),
		History: slices.Clone(s.History),
	}, nil
}

func (r *Roster) List() []Entry {
	entries := make([]Entry, 0, len(r.students))
	for _, roll := range r.sortedRolls() {
		entries = append(entries, Entry{RollNumber: roll, Name: r.students[roll].Name})
	}
	return entries
}

// Snapshot returns copies of every student sorted by roll number.
func (r *Roster) Snapshot() []Student {
	snapshot := make([]Student, 0, len(r.students))
	for _, roll := range r.sortedRolls() {
		snapshot = append(snapshot, r.students[roll].clone())
	}
	return snapshot
}

// Merge replaces counters and history of students already on the roster.
// Students that are not on the roster are ignored. Names are kept.
func (r *Roster) Merge(persisted []Student) int {
	merged := 0
	for _, p := range persisted {
		s, ok := r.students[p.RollNumber]
		if !ok {
			continue
		}
		s.TotalClasses = p.TotalClasses
		s.PresentCount = p.PresentCount
		s.History = slices.Clone(p.History)
		merged++
	}
	return merged
}

func (r *Roster) Save(ctx context.Context, store Store) error {
	if err := store.Save(ctx, r.Snapshot()); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}

// Load merges persisted state into the roster, see Merge. It returns the
// number of students that were updated.
func (r *Roster) Load(ctx context.Context, store Store) (int, error) {
	persisted, err := store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load roster: %w", err)
	}
	return r.Merge(persisted), nil
}

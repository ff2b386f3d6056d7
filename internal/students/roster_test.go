package students

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		ts := next
		next = next.Add(time.Minute)
		return ts
	}
}

func TestSeededRoster(t *testing.T) {
	roster := NewSeededRoster()
	if roster.Len() != 20 {
		t.Fatalf("expected 20 students, got %d", roster.Len())
	}
	first, ok := roster.Get(1)
	if !ok || first.Name != "Ali" {
		t.Fatalf("expected Ali at roll 1, got %+v", first)
	}
	last, ok := roster.Get(20)
	if !ok || last.Name != "Rashid" {
		t.Fatalf("expected Rashid at roll 20, got %+v", last)
	}
}

func TestAddThenGet(t *testing.T) {
	roster := NewRoster()
	if err := roster.Add("Bilal", 201); err != nil {
		t.Fatal(err)
	}
	s, ok := roster.Get(201)
	if !ok {
		t.Fatal("student not found")
	}
	if s.TotalClasses != 0 || s.PresentCount != 0 || len(s.History) != 0 {
		t.Fatalf("expected zero record, got %+v", s)
	}
}

func TestAddDuplicate(t *testing.T) {
	roster := NewSeededRoster()
	if _, err := roster.Mark(3, "present"); err != nil {
		t.Fatal(err)
	}
	err := roster.Add("Someone", 3)
	if !errors.Is(err, ErrDuplicateRollNumber) {
		t.Fatalf("expected %q, got %v", ErrDuplicateRollNumber, err)
	}
	s, _ := roster.Get(3)
	if s.Name != "Ayesha" || s.TotalClasses != 1 || s.PresentCount != 1 {
		t.Fatalf("existing record was modified: %+v", s)
	}
}

func TestMark(t *testing.T) {
	start := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	roster := NewSeededRoster(WithClock(fixedClock(start)))

	for _, status := range []string{"present", "PRESENT", "absent"} {
		if _, err := roster.Mark(5, status); err != nil {
			t.Fatalf("mark %s: %v", status, err)
		}
	}

	s, _ := roster.Get(5)
	if s.TotalClasses != 3 || s.PresentCount != 2 || s.AbsentCount() != 1 {
		t.Fatalf("unexpected counters: %+v", s)
	}
	if len(s.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(s.History))
	}
	for i, expected := range []Status{StatusPresent, StatusPresent, StatusAbsent} {
		if s.History[i].Status != expected {
			t.Fatalf("history[%d]: expected %s, got %s", i, expected, s.History[i].Status)
		}
		if !s.History[i].Time.Equal(start.Add(time.Duration(i) * time.Minute)) {
			t.Fatalf("history[%d]: unexpected time %s", i, s.History[i].Time)
		}
	}
}

func TestMarkErrors(t *testing.T) {
	roster := NewSeededRoster()

	if _, err := roster.Mark(99, "present"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
	if _, err := roster.Mark(99, "late"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing roll must be reported before status, got %v", err)
	}
	if _, err := roster.Mark(1, "late"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected %q, got %v", ErrInvalidStatus, err)
	}
	s, _ := roster.Get(1)
	if s.TotalClasses != 0 || len(s.History) != 0 {
		t.Fatalf("failed mark must not mutate: %+v", s)
	}
}

func TestPercentage(t *testing.T) {
	for _, tc := range []struct {
		present, absent int
		expected        float64
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 4, 0},
		{1, 3, 25},
		{3, 1, 75},
	} {
		roster := NewRoster()
		if err := roster.Add("x", 1); err != nil {
			t.Fatal(err)
		}
		for range tc.present {
			if _, err := roster.Mark(1, "present"); err != nil {
				t.Fatal(err)
			}
		}
		for range tc.absent {
			if _, err := roster.Mark(1, "absent"); err != nil {
				t.Fatal(err)
			}
		}
		s, _ := roster.Get(1)
		if s.Percentage() != tc.expected {
			t.Fatalf("%d present, %d absent: expected %v, got %v", tc.present, tc.absent, tc.expected, s.Percentage())
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	roster := NewSeededRoster()
	if _, err := roster.Mark(1, "present"); err != nil {
		t.Fatal(err)
	}
	s, _ := roster.Get(1)
	s.History[0].Status = StatusAbsent
	s.PresentCount = 0

	again, _ := roster.Get(1)
	if again.PresentCount != 1 || again.History[0].Status != StatusPresent {
		t.Fatalf("roster record was aliased: %+v", again)
	}
}

func TestDelete(t *testing.T) {
	roster := NewSeededRoster()
	deleted, err := roster.Delete(7)
	if err != nil {
		t.Fatal(err)
	}
	if deleted.Name != "Zain" {
		t.Fatalf("expected Zain, got %q", deleted.Name)
	}
	if _, ok := roster.Get(7); ok {
		t.Fatal("student still on roster")
	}
	if _, err := roster.Delete(7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
}

func TestRecordsSorted(t *testing.T) {
	roster := NewSeededRoster()
	if err := roster.Add("Bilal", 0); err != nil {
		t.Fatal(err)
	}
	if err := roster.Add("Yusuf", 150); err != nil {
		t.Fatal(err)
	}
	if _, err := roster.Mark(2, "present"); err != nil {
		t.Fatal(err)
	}
	if _, err := roster.Mark(2, "absent"); err != nil {
		t.Fatal(err)
	}

	records := roster.Records()
	if len(records) != 22 {
		t.Fatalf("expected 22 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].RollNumber >= records[i].RollNumber {
			t.Fatalf("records not sorted at %d: %d >= %d", i, records[i-1].RollNumber, records[i].RollNumber)
		}
	}
	ahmed := records[2]
	if ahmed.Name != "Ahmed" || ahmed.Present != 1 || ahmed.Absent != 1 || ahmed.PercentageString() != "50.00%" {
		t.Fatalf("unexpected record: %+v", ahmed)
	}
	if records[21].Name != "Yusuf" {
		t.Fatalf("expected Yusuf last, got %q", records[21].Name)
	}

	list := roster.List()
	if len(list) != 22 || list[0].Name != "Bilal" || list[0].RollNumber != 0 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestMarkAll(t *testing.T) {
	roster := NewSeededRoster()
	if count := roster.MarkAll(StatusPresent); count != 20 {
		t.Fatalf("expected 20, got %d", count)
	}
	for _, r := range roster.Records() {
		if r.TotalClasses != 1 || r.Present != 1 {
			t.Fatalf("unexpected record: %+v", r)
		}
	}
}

func TestMerge(t *testing.T) {
	roster := NewSeededRoster()
	ts := time.Date(2026, time.October, 1, 10, 30, 0, 0, time.UTC)
	merged := roster.Merge([]Student{
		{Name: "Renamed", RollNumber: 4, TotalClasses: 2, PresentCount: 1, History: []Mark{
			{Time: ts, Status: StatusPresent},
			{Time: ts.Add(time.Hour), Status: StatusAbsent},
		}},
		{Name: "Stranger", RollNumber: 500, TotalClasses: 1, PresentCount: 1},
	})
	if merged != 1 {
		t.Fatalf("expected 1 merged student, got %d", merged)
	}
	if roster.Len() != 20 {
		t.Fatalf("merge must not add students, got %d", roster.Len())
	}
	s, _ := roster.Get(4)
	if s.Name != "Fatima" {
		t.Fatalf("merge must keep names, got %q", s.Name)
	}
	if s.TotalClasses != 2 || s.PresentCount != 1 || len(s.History) != 2 {
		t.Fatalf("unexpected record: %+v", s)
	}
}

package statistics

import (
	"testing"
	"time"

	"github.com/attendbot/internal/students"
)

func TestSummarize(t *testing.T) {
	service := NewService(time.UTC)

	empty := service.Summarize(students.NewSeededRoster().Snapshot())
	if empty.TotalStudents != 20 || empty.Marked || empty.SessionsHeld != 0 {
		t.Fatalf("unexpected summary: %+v", empty)
	}

	roster := students.NewSeededRoster()
	roster.MarkAll(students.StatusPresent)
	for _, mark := range []struct {
		roll   students.RollNumber
		status string
	}{
		{1, "absent"}, {2, "absent"}, {2, "present"}, {3, "present"},
	} {
		if _, err := roster.Mark(mark.roll, mark.status); err != nil {
			t.Fatal(err)
		}
	}

	summary := service.Summarize(roster.Snapshot())
	if summary.SessionsHeld != 3 {
		t.Fatalf("expected 3 sessions, got %d", summary.SessionsHeld)
	}
	if summary.PresentLatest != 19 || summary.AbsentLatest != 1 {
		t.Fatalf("unexpected latest counts: %+v", summary)
	}
	// 24 marks, 22 present
	if summary.OverallString() != "91.67%" {
		t.Fatalf("expected 91.67%%, got %s", summary.OverallString())
	}
}

func TestCalculateYear(t *testing.T) {
	clock := []time.Time{
		time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 6, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
	}
	roster := students.NewSeededRoster(students.WithClock(func() time.Time {
		ts := clock[0]
		clock = clock[1:]
		return ts
	}))
	for _, mark := range []struct {
		roll   students.RollNumber
		status string
	}{
		{1, "present"}, {1, "present"}, {2, "absent"}, {2, "present"},
	} {
		if _, err := roster.Mark(mark.roll, mark.status); err != nil {
			t.Fatal(err)
		}
	}

	stats := NewService(time.UTC).CalculateYear(roster.Snapshot(), 2026)
	if stats.Total != 3 {
		t.Fatalf("expected 3 marks in 2026, got %d", stats.Total)
	}
	if stats.Months[0] != (Month{Total: 2, Present: 1}) {
		t.Fatalf("unexpected january: %+v", stats.Months[0])
	}
	if stats.Months[2] != (Month{Total: 1, Present: 1}) {
		t.Fatalf("unexpected march: %+v", stats.Months[2])
	}
	if len(stats.Students) != 2 || stats.Students[0].Name != "Ahmed" {
		t.Fatalf("unexpected students: %+v", stats.Students)
	}

	// the last day of 2025 in UTC is already 2026 two hours east
	shifted := NewService(time.FixedZone("EET", 2*60*60)).CalculateYear(roster.Snapshot(), 2026)
	if shifted.Total != 4 {
		t.Fatalf("expected 4 marks in 2026 EET, got %d", shifted.Total)
	}
}

package calendars

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/attendbot/internal/students"
	"github.com/dgraph-io/badger/v4"
)

type roster struct {
	*students.Roster
}

func (r roster) View(fn func(*students.Roster) error) error {
	return fn(r.Roster)
}

func TestWriteICal(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	start := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	next := start
	r := students.NewSeededRoster(students.WithClock(func() time.Time {
		ts := next
		next = next.Add(24 * time.Hour)
		return ts
	}))
	if _, err := r.Mark(4, "present"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Mark(4, "absent"); err != nil {
		t.Fatal(err)
	}

	service := NewService(NewStore(db), roster{r}, 45*time.Minute)
	ctx := context.Background()

	if _, err := service.CreateCalendar(ctx, 99); !errors.Is(err, students.ErrNotFound) {
		t.Fatalf("expected %q, got %v", students.ErrNotFound, err)
	}

	cal, err := service.CreateCalendar(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	again, err := service.CreateCalendar(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != cal.ID {
		t.Fatalf("expected the same calendar, got %q and %q", cal.ID, again.ID)
	}

	var buf bytes.Buffer
	if err := service.WriteICal(ctx, &buf, cal.ID); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, expected := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:[PRESENT] Fatima",
		"SUMMARY:[ABSENT] Fatima",
		"DTSTART:20261014T090000Z",
		"DTEND:20261014T094500Z",
		"DTSTART:20261015T090000Z",
	} {
		if !strings.Contains(out, expected) {
			t.Fatalf("missing %q in:\n%s", expected, out)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Fatalf("expected 2 events, got %d", n)
	}

	if err := service.WriteICal(ctx, &buf, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
}

package sessions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/attendbot/internal/chatbot"
	"github.com/attendbot/internal/students"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type failingStore struct {
	saves int
}

func (f *failingStore) Save(context.Context, []students.Student) error {
	f.saves++
	return errors.New("disk full")
}

func (f *failingStore) Load(context.Context) ([]students.Student, error) {
	return nil, nil
}

func TestHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance_data.json")
	store := students.NewFileStore(path, time.UTC)
	service := NewService(discardLogger, students.NewSeededRoster(), store)

	ctx := context.Background()
	if err := service.Init(ctx); err != nil {
		t.Fatal(err)
	}
	session := service.Open(ctx)
	if len(session.Transcript) != 1 || !strings.Contains(session.Transcript[0].Text, "20 preloaded students") {
		t.Fatalf("unexpected greeting: %+v", session.Transcript)
	}

	entry, err := service.Handle(ctx, session.ID, "p 3")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Role != RoleAssistant || entry.Text != "Marked Ayesha as Present!" || entry.Warning != "" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	// a fresh service over the same file sees the mark
	reloaded := NewService(discardLogger, students.NewSeededRoster(), store)
	if err := reloaded.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if err := reloaded.View(func(r *students.Roster) error {
		s, _ := r.Get(3)
		if s.PresentCount != 1 {
			t.Fatalf("expected persisted mark, got %+v", s)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := service.Get(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Transcript) != 3 {
		t.Fatalf("expected 3 transcript entries, got %d", len(got.Transcript))
	}
	if got.Transcript[1].Role != RoleUser || got.Transcript[1].Text != "p 3" {
		t.Fatalf("unexpected user entry: %+v", got.Transcript[1])
	}
}

func TestHandleStructured(t *testing.T) {
	service := NewService(discardLogger, students.NewSeededRoster(), &failingStore{})
	ctx := context.Background()
	session := service.Open(ctx)

	entry, err := service.Handle(ctx, session.ID, "attendance of 2")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := entry.Response.(chatbot.Detail); !ok {
		t.Fatalf("expected detail, got %T", entry.Response)
	}
	if entry.Text != "Attendance record for Ahmed:" {
		t.Fatalf("unexpected caption %q", entry.Text)
	}
}

func TestHandleSaveFailure(t *testing.T) {
	store := &failingStore{}
	service := NewService(discardLogger, students.NewSeededRoster(), store)
	ctx := context.Background()
	session := service.Open(ctx)

	entry, err := service.Handle(ctx, session.ID, "list")
	if err != nil {
		t.Fatal(err)
	}
	if store.saves != 0 {
		t.Fatalf("read-only commands must not save, got %d saves", store.saves)
	}

	entry, err = service.Handle(ctx, session.ID, "p all")
	if err != nil {
		t.Fatalf("save failure must not fail the command: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("expected 1 save, got %d", store.saves)
	}
	if entry.Warning != saveWarning {
		t.Fatalf("expected warning, got %q", entry.Warning)
	}
	if entry.Text != "Marked all 20 students as present!" {
		t.Fatalf("unexpected text %q", entry.Text)
	}
}

func TestSessionLifecycle(t *testing.T) {
	service := NewService(discardLogger, students.NewSeededRoster(), &failingStore{})
	ctx := context.Background()

	if _, err := service.Handle(ctx, "missing", "help"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}

	session := service.OpenWithID(ctx, "telegram-1")
	if _, err := service.Handle(ctx, session.ID, "help"); err != nil {
		t.Fatal(err)
	}
	again := service.OpenWithID(ctx, "telegram-1")
	if len(again.Transcript) != 3 {
		t.Fatalf("reopening must keep the transcript, got %d entries", len(again.Transcript))
	}

	restarted, err := service.Restart(ctx, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(restarted.Transcript) != 1 {
		t.Fatalf("expected greeting only, got %d entries", len(restarted.Transcript))
	}

	service.Close(ctx, session.ID)
	if _, err := service.Get(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
}

func TestCookies(t *testing.T) {
	id := NewID()
	cookies := ToCookies(id, false)
	parsed, ok := FromCookies(cookies)
	if !ok || parsed != id {
		t.Fatalf("expected %q, got %q", id, parsed)
	}
	if _, ok := FromCookies([]*http.Cookie{{Name: "other", Value: string(id)}}); ok {
		t.Fatal("unexpected session cookie")
	}
	if _, ok := FromCookies([]*http.Cookie{{Name: "session_id", Value: "telegram-1"}}); ok {
		t.Fatal("telegram session accepted from cookie")
	}

	ctx := NewContext(context.Background(), id)
	fromCtx, ok := FromContext(ctx)
	if !ok || fromCtx != id {
		t.Fatalf("expected %q, got %q", id, fromCtx)
	}
}

func TestExpire(t *testing.T) {
	service := NewService(discardLogger, students.NewSeededRoster(), &failingStore{})
	ctx := context.Background()
	now := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	idle := service.Open(ctx)
	active := service.Open(ctx)
	now = now.Add(45 * time.Minute)
	if _, err := service.Handle(ctx, active.ID, "list"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Minute)

	if expired := service.Expire(ctx, time.Hour); expired != 1 {
		t.Fatalf("expected 1 expired session, got %d", expired)
	}
	if _, err := service.Get(ctx, idle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %q, got %v", ErrNotFound, err)
	}
	if service.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", service.Len())
	}
}

func TestHandleOnce(t *testing.T) {
	store := &failingStore{}
	service := NewService(discardLogger, students.NewSeededRoster(), store)
	ctx := context.Background()

	for range 1000 {
		service.HandleOnce(ctx, "list")
	}
	entry := service.HandleOnce(ctx, "p 1")
	if entry.Text != "Marked Ali as Present!" || entry.Warning != saveWarning {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if service.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", service.Len())
	}
	if err := service.View(func(r *students.Roster) error {
		s, _ := r.Get(1)
		if s.PresentCount != 1 {
			t.Fatalf("expected the mark to reach the roster, got %+v", s)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

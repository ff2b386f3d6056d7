package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/attendbot/internal/chatbot"
	"github.com/attendbot/internal/students"
)

var ErrNotFound = errors.New("not found")

const saveWarning = "Warning: attendance could not be saved."

// Service owns the roster and serialises every command against it.
type Service struct {
	logger     *slog.Logger
	store      students.Store
	now        func() time.Time
	guard      sync.Mutex
	roster     *students.Roster
	dispatcher *chatbot.Dispatcher
	sessions   map[ID]*Session
}

func NewService(
	logger *slog.Logger,
	roster *students.Roster,
	store students.Store,
) *Service {
	return &Service{
		logger:     logger,
		store:      store,
		now:        time.Now,
		roster:     roster,
		dispatcher: chatbot.NewDispatcher(roster),
		sessions:   make(map[ID]*Session),
	}
}

// Init merges persisted attendance into the roster.
func (s *Service) Init(ctx context.Context) error {
	s.guard.Lock()
	defer s.guard.Unlock()
	merged, err := s.roster.Load(ctx, s.store)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "roster loaded", "students", s.roster.Len(), "merged", merged)
	return nil
}

func (s *Service) greeting() Entry {
	return Entry{
		Role: RoleAssistant,
		Time: s.now(),
		Text: fmt.Sprintf("Hello! I'm AttendBot with %d preloaded students. Type 'help' to see available commands.", s.roster.Len()),
	}
}

// Open starts a new session.
func (s *Service) Open(ctx context.Context) *Session {
	return s.OpenWithID(ctx, NewID())
}

// OpenWithID returns the session with id, starting it when it does not exist.
func (s *Service) OpenWithID(ctx context.Context, id ID) *Session {
	s.guard.Lock()
	defer s.guard.Unlock()
	if session, ok := s.sessions[id]; ok {
		session.lastSeen = s.now()
		return session.clone()
	}
	session := &Session{
		ID:         id,
		Transcript: []Entry{s.greeting()},
		lastSeen:   s.now(),
	}
	s.sessions[id] = session
	s.logger.InfoContext(ctx, "session opened", "session_id", id)
	return session.clone()
}

func (s *Service) Get(_ context.Context, id ID) (*Session, error) {
	s.guard.Lock()
	defer s.guard.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	session.lastSeen = s.now()
	return session.clone(), nil
}

// Restart clears the transcript of a session.
func (s *Service) Restart(ctx context.Context, id ID) (*Session, error) {
	s.guard.Lock()
	defer s.guard.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	session.Transcript = []Entry{s.greeting()}
	session.lastSeen = s.now()
	s.logger.InfoContext(ctx, "session restarted", "session_id", id)
	return session.clone(), nil
}

func (s *Service) Close(ctx context.Context, id ID) {
	s.guard.Lock()
	defer s.guard.Unlock()
	delete(s.sessions, id)
	s.logger.InfoContext(ctx, "session closed", "session_id", id)
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.guard.Lock()
	defer s.guard.Unlock()
	return len(s.sessions)
}

// Expire closes every session that was not used for idle and returns how
// many were closed.
func (s *Service) Expire(ctx context.Context, idle time.Duration) int {
	s.guard.Lock()
	defer s.guard.Unlock()
	deadline := s.now().Add(-idle)
	expired := 0
	for id, session := range s.sessions {
		if session.lastSeen.Before(deadline) {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.logger.InfoContext(ctx, "sessions expired", "count", expired, "remaining", len(s.sessions))
	}
	return expired
}

// ExpireEvery runs Expire every interval until ctx is done.
func (s *Service) ExpireEvery(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Expire(ctx, idle)
		}
	}
}

// Handle runs one command in a session and returns the assistant's reply.
// The roster is saved after every command that changed it. A failed save
// is reported as a warning on the reply.
func (s *Service) Handle(ctx context.Context, id ID, input string) (Entry, error) {
	s.guard.Lock()
	defer s.guard.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return Entry{}, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	session.lastSeen = s.now()
	return s.handle(ctx, session, input), nil
}

// HandleOnce runs one command outside of any session, for clients that
// keep no session between requests.
func (s *Service) HandleOnce(ctx context.Context, input string) Entry {
	s.guard.Lock()
	defer s.guard.Unlock()
	return s.handle(ctx, &Session{}, input)
}

func (s *Service) handle(ctx context.Context, session *Session, input string) Entry {
	session.Transcript = append(session.Transcript, Entry{
		Role: RoleUser,
		Time: s.now(),
		Text: input,
	})

	reply := s.dispatcher.Dispatch(input)
	entry := Entry{
		Role:     RoleAssistant,
		Time:     s.now(),
		Text:     caption(reply.Response),
		Response: reply.Response,
	}
	if reply.Changed {
		if err := s.roster.Save(ctx, s.store); err != nil {
			s.logger.WarnContext(ctx, "save roster", "session_id", session.ID, "error", err)
			entry.Warning = saveWarning
		}
	}
	session.Transcript = append(session.Transcript, entry)
	s.logger.DebugContext(ctx, "handled command", "session_id", session.ID, "input", input, "changed", reply.Changed)
	return entry
}

// caption is the line shown above a structured response.
func caption(r chatbot.Response) string {
	switch r := r.(type) {
	case chatbot.Message:
		return r.Text
	case chatbot.Table:
		return "Here's the attendance data:"
	case chatbot.Detail:
		return fmt.Sprintf("Attendance record for %s:", r.Detail.Name)
	case chatbot.List:
		return "Enrolled students:"
	default:
		return ""
	}
}

// View runs fn with the roster locked. fn must not keep the roster.
func (s *Service) View(fn func(*students.Roster) error) error {
	s.guard.Lock()
	defer s.guard.Unlock()
	return fn(s.roster)
}

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/attendbot/internal/calendars"
	"github.com/attendbot/internal/chatbot"
	"github.com/attendbot/internal/http/templates"
	"github.com/attendbot/internal/sessions"
	"github.com/attendbot/internal/statistics"
	"github.com/attendbot/internal/students"
)

func Handler(
	logger *slog.Logger,
	renderer templates.Renderer,
	staticHandler http.Handler,
	sessionsService *sessions.Service,
	statisticsService *statistics.Service,
	calendarsService *calendars.Service,
	location *time.Location,
) http.HandlerFunc {
	withSession := WithSession(sessionsService)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", withSession(handleChatPage(logger, renderer, sessionsService, statisticsService, location)))
	mux.HandleFunc("POST /{$}", withSession(handleCommand(logger, sessionsService)))
	mux.HandleFunc("POST /restart", withSession(handleRestart(logger, sessionsService)))

	mux.HandleFunc("POST /api/commands", handleAPICommand(logger, sessionsService))
	mux.HandleFunc("GET /api/students", handleAPIStudents(logger, sessionsService))
	mux.HandleFunc("GET /api/statistics", handleAPIStatistics(logger, sessionsService, statisticsService))

	mux.HandleFunc("POST /students/{roll}/calendars", handleCreateCalendar(logger, calendarsService))
	mux.HandleFunc("GET /calendars/{calendar_id}/attendance.ics", handleGetCalendar(logger, calendarsService))

	mux.HandleFunc("GET /", staticHandler.ServeHTTP)

	return WithAccessLogs(logger)(mux.ServeHTTP)
}

func sessionID(r *http.Request) sessions.ID {
	id, _ := sessions.FromContext(r.Context())
	return id
}

func handleChatPage(
	logger *slog.Logger,
	renderer templates.Renderer,
	sessionsService *sessions.Service,
	statisticsService *statistics.Service,
	location *time.Location,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionsService.Get(r.Context(), sessionID(r))
		if err != nil {
			logger.Error("get session", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var summary statistics.Summary
		if err := sessionsService.View(func(roster *students.Roster) error {
			summary = statisticsService.Summarize(roster.Snapshot())
			return nil
		}); err != nil {
			logger.Error("summarize", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderer.RenderChatPage(w, templates.ChatData{
			Entries:  templates.EntriesFrom(session.Transcript),
			Summary:  summary,
			Location: location,
		}); err != nil {
			logger.Error("render chat page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func handleCommand(logger *slog.Logger, sessionsService *sessions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if command := r.PostForm.Get("command"); command != "" {
			if _, err := sessionsService.Handle(r.Context(), sessionID(r), command); err != nil {
				logger.Error("handle command", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func handleRestart(logger *slog.Logger, sessionsService *sessions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sessionsService.Restart(r.Context(), sessionID(r)); err != nil {
			logger.Error("restart session", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Response json.RawMessage `json:"response"`
	Warning  string          `json:"warning,omitempty"`
}

func handleAPICommand(logger *slog.Logger, sessionsService *sessions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		// Commands join the caller's chat when it sends a live session
		// cookie. Other clients get a reply without a session.
		var entry sessions.Entry
		id, ok := sessions.FromCookies(r.Cookies())
		if ok {
			var err error
			entry, err = sessionsService.Handle(r.Context(), id, req.Command)
			ok = err == nil
		}
		if !ok {
			entry = sessionsService.HandleOnce(r.Context(), req.Command)
		}

		body, err := chatbot.MarshalResponse(entry.Response)
		if err != nil {
			logger.Error("marshal response", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(logger, w, commandResponse{
			Response: body,
			Warning:  entry.Warning,
		})
	}
}

func handleAPIStudents(logger *slog.Logger, sessionsService *sessions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var records []students.Record
		if err := sessionsService.View(func(roster *students.Roster) error {
			records = roster.Records()
			return nil
		}); err != nil {
			logger.Error("list students", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []students.Record{}
		}
		writeJSON(logger, w, records)
	}
}

type statisticsResponse struct {
	Summary statistics.Summary `json:"summary"`
	Overall string             `json:"overall"`
	Year    *statistics.Year   `json:"year,omitempty"`
}

// handleAPIStatistics serves the quick stats, and the monthly breakdown
// when a year query parameter is given.
func handleAPIStatistics(
	logger *slog.Logger,
	sessionsService *sessions.Service,
	statisticsService *statistics.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year := 0
		if value := r.URL.Query().Get("year"); value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				http.Error(w, "malformed year", http.StatusBadRequest)
				return
			}
			year = parsed
		}

		var resp statisticsResponse
		if err := sessionsService.View(func(roster *students.Roster) error {
			snapshot := roster.Snapshot()
			resp.Summary = statisticsService.Summarize(snapshot)
			if year != 0 {
				resp.Year = statisticsService.CalculateYear(snapshot, year)
			}
			return nil
		}); err != nil {
			logger.Error("calculate statistics", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp.Overall = resp.Summary.OverallString()
		writeJSON(logger, w, resp)
	}
}

func handleCreateCalendar(logger *slog.Logger, calendarsService *calendars.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roll, err := strconv.Atoi(r.PathValue("roll"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		cal, err := calendarsService.CreateCalendar(r.Context(), students.RollNumber(roll))
		if errors.Is(err, students.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		} else if err != nil {
			logger.Error("create calendar", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("webcal://%s/calendars/%s/attendance.ics", r.Host, cal.ID), http.StatusFound)
	}
}

func handleGetCalendar(logger *slog.Logger, calendarsService *calendars.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		err := calendarsService.WriteICal(r.Context(), w, r.PathValue("calendar_id"))
		if errors.Is(err, calendars.ErrNotFound) || errors.Is(err, students.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		} else if err != nil {
			logger.Error("write calendar", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode json", "error", err)
	}
}

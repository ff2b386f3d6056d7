package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var _ slog.Handler = &SlogHandler{}

type broadcaster struct {
	mu  sync.Mutex
	bot *Bot
}

// SlogHandler forwards warnings and errors to every registered chat once a
// bot is attached. Until then records only reach next.
type SlogHandler struct {
	target *broadcaster
	next   slog.Handler
}

func NewSlogHandler(next slog.Handler) *SlogHandler {
	return &SlogHandler{
		target: &broadcaster{},
		next:   next,
	}
}

// Attach starts broadcasting through bot. Handlers derived with WithAttrs
// or WithGroup share the attached bot.
func (h *SlogHandler) Attach(bot *Bot) {
	h.target.mu.Lock()
	h.target.bot = bot
	h.target.mu.Unlock()
}

func (h *SlogHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= slog.LevelWarn || h.next != nil && h.next.Enabled(ctx, l)
}

func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		h.target.mu.Lock()
		var err error
		if h.target.bot != nil {
			err = h.target.bot.BroadcastSlogRecord(ctx, r)
		}
		h.target.mu.Unlock()
		if err != nil {
			return fmt.Errorf("broadcast: %w", err)
		}
	}
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if h.next == nil {
		return h
	}
	return &SlogHandler{target: h.target, next: h.next.WithAttrs(attrs)}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if h.next == nil {
		return h
	}
	return &SlogHandler{target: h.target, next: h.next.WithGroup(name)}
}

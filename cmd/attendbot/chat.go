package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/attendbot/internal/chatbot"
	"github.com/attendbot/internal/sessions"
)

func runChat(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	a, err := openApp(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return repl(ctx, a.sessions, a.location, in, out)
}

// repl answers one command per line until exit, quit or end of input.
func repl(ctx context.Context, service *sessions.Service, location *time.Location, in io.Reader, out io.Writer) error {
	session := service.Open(ctx)
	defer service.Close(ctx, session.ID)

	for _, entry := range session.Transcript {
		fmt.Fprintln(out, entry.Text)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		entry, err := service.Handle(ctx, session.ID, input)
		if err != nil {
			return fmt.Errorf("handle %q: %w", input, err)
		}
		fmt.Fprintln(out, chatbot.FormatText(entry.Response, location))
		if entry.Warning != "" {
			fmt.Fprintln(out, entry.Warning)
		}
	}
}

package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/attendbot/internal/chatbot"
	"github.com/attendbot/internal/sessions"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	store    *Store
	sessions *sessions.Service
	location *time.Location
}

func NewBot(
	store *Store,
	sessionsService *sessions.Service,
	location *time.Location,
	token string,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:      api,
		store:    store,
		sessions: sessionsService,
		location: location,
	}, nil
}

func (b *Bot) Broadcast(ctx context.Context, message string) error {
	chats, err := b.store.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	for _, chat := range chats {
		msg := tgbotapi.NewMessage(chat.ID, message)
		if _, err := b.api.Send(msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

func (b *Bot) BroadcastSlogRecord(ctx context.Context, r slog.Record) error {
	return b.Broadcast(ctx, formatRecord(r))
}

func formatRecord(r slog.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", r.Level, r.Message)
	r.Attrs(func(attr slog.Attr) bool {
		fmt.Fprintf(&sb, "\n%s: %s", attr.Key, attr.Value)
		return true
	})
	return sb.String()
}

func (b *Bot) Listen(ctx context.Context) error {
	offset, err := b.store.GetUpdatesOffset(ctx)
	if err != nil {
		return fmt.Errorf("get updates offset: %w", err)
	}
	updates := b.api.GetUpdatesChan(tgbotapi.UpdateConfig{Offset: offset, Timeout: 60})
	defer b.api.StopReceivingUpdates()
	slog.InfoContext(ctx, "listening for telegram updates", "bot", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "stopping listening for telegram updates")
			return nil
		case update := <-updates:
			if update.Message != nil {
				if err := b.handleMessage(ctx, update.Message); err != nil {
					slog.ErrorContext(ctx, "handle message", "chat_id", update.Message.Chat.ID, "error", err)
				}
			}

			if err := b.store.SetUpdatesOffset(ctx, update.UpdateID+1); err != nil {
				slog.ErrorContext(ctx, "set updates offset", "error", err)
			}
		}
	}
}

func sessionID(chatID int64) sessions.ID {
	return sessions.ID(fmt.Sprintf("telegram-%d", chatID))
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			return b.handleStart(ctx, message)
		case "stop":
			return b.handleStop(ctx, message)
		default:
			// "/p all" is the same as "p all"
			return b.handleText(ctx, message, strings.TrimSpace(message.Command()+" "+message.CommandArguments()))
		}
	}
	return b.handleText(ctx, message, message.Text)
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	chat := Chat{
		ID:        message.Chat.ID,
		FirstName: message.Chat.FirstName,
		Since:     time.Now(),
	}
	if err := b.store.InsertChat(ctx, &chat); err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	session := b.sessions.OpenWithID(ctx, sessionID(chat.ID))
	greeting := session.Transcript[0].Text
	return b.send(tgbotapi.NewMessage(chat.ID, greeting))
}

func (b *Bot) handleStop(ctx context.Context, message *tgbotapi.Message) error {
	if err := b.store.DeleteChat(ctx, message.Chat.ID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	b.sessions.Close(ctx, sessionID(message.Chat.ID))
	return b.send(tgbotapi.NewMessage(message.Chat.ID, "Bye! Send /start to talk again."))
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message, text string) error {
	id := sessionID(message.Chat.ID)
	b.sessions.OpenWithID(ctx, id)
	entry, err := b.sessions.Handle(ctx, id, text)
	if err != nil {
		return fmt.Errorf("handle: %w", err)
	}
	for _, msg := range b.reply(message.Chat.ID, entry) {
		if err := b.send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) reply(chatID int64, entry sessions.Entry) []tgbotapi.MessageConfig {
	chunks := renderEntry(entry, b.location)
	msgs := make([]tgbotapi.MessageConfig, len(chunks))
	for i, chunk := range chunks {
		msgs[i] = tgbotapi.NewMessage(chatID, chunk)
		if _, ok := entry.Response.(chatbot.Message); !ok {
			msgs[i].ParseMode = tgbotapi.ModeHTML
		}
	}
	return msgs
}

// messageLimit is the longest text telegram accepts in one message.
const messageLimit = 4096

// renderEntry wraps structured responses in <pre> so columns stay aligned,
// and splits them on line breaks into messages telegram accepts.
func renderEntry(entry sessions.Entry, location *time.Location) []string {
	var chunks []string
	switch entry.Response.(type) {
	case chatbot.Message, nil:
		chunks = chunkLines(entry.Text, messageLimit, func(s string) string { return s })
	default:
		text := chatbot.FormatText(entry.Response, location)
		for _, chunk := range chunkLines(text, messageLimit-len("<pre></pre>"), html.EscapeString) {
			chunks = append(chunks, "<pre>"+chunk+"</pre>")
		}
	}
	if entry.Warning != "" {
		last := len(chunks) - 1
		if last >= 0 && utf8.RuneCountInString(chunks[last])+1+utf8.RuneCountInString(entry.Warning) <= messageLimit {
			chunks[last] += "\n" + entry.Warning
		} else {
			chunks = append(chunks, entry.Warning)
		}
	}
	return chunks
}

// chunkLines escapes text and packs whole lines into chunks of at most
// limit runes. A line longer than limit is cut across chunks.
func chunkLines(text string, limit int, escape func(string) string) []string {
	var chunks []string
	var current strings.Builder
	size, started := 0, false
	flush := func() {
		chunks = append(chunks, current.String())
		current.Reset()
		size, started = 0, false
	}
	for _, line := range strings.Split(text, "\n") {
		for i, piece := range cutLine(line, limit, escape) {
			n := utf8.RuneCountInString(piece)
			if started && (i > 0 || size+1+n > limit) {
				flush()
			}
			if started {
				current.WriteByte('\n')
				size++
			}
			current.WriteString(piece)
			size += n
			started = true
		}
	}
	if started {
		flush()
	}
	return chunks
}

// cutLine escapes line into pieces of at most limit runes each.
func cutLine(line string, limit int, escape func(string) string) []string {
	var pieces []string
	var piece strings.Builder
	size := 0
	for _, r := range line {
		escaped := escape(string(r))
		n := utf8.RuneCountInString(escaped)
		if size+n > limit {
			pieces = append(pieces, piece.String())
			piece.Reset()
			size = 0
		}
		piece.WriteString(escaped)
		size += n
	}
	return append(pieces, piece.String())
}

func (b *Bot) send(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

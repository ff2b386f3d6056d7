package templates

import (
	"time"

	"github.com/attendbot/internal/chatbot"
	"github.com/attendbot/internal/sessions"
	"github.com/attendbot/internal/students"
)

type EntryKind string

const (
	EntryKindMessage EntryKind = "message"
	EntryKindTable   EntryKind = "table"
	EntryKindDetail  EntryKind = "detail"
	EntryKindList    EntryKind = "list"
)

// Entry is a transcript entry flattened for templates.
type Entry struct {
	Role    sessions.Role
	Time    time.Time
	Text    string
	Warning string
	Kind    EntryKind
	Rows    []students.Record
	Detail  *students.Detail
	List    []students.Entry
}

func EntryFrom(e sessions.Entry) Entry {
	out := Entry{
		Role:    e.Role,
		Time:    e.Time,
		Text:    e.Text,
		Warning: e.Warning,
		Kind:    EntryKindMessage,
	}
	switch r := e.Response.(type) {
	case chatbot.Table:
		out.Kind = EntryKindTable
		out.Rows = r.Rows
	case chatbot.Detail:
		out.Kind = EntryKindDetail
		out.Detail = &r.Detail
	case chatbot.List:
		out.Kind = EntryKindList
		out.List = r.Entries
	case chatbot.Message, nil:
	}
	return out
}

func EntriesFrom(transcript []sessions.Entry) []Entry {
	out := make([]Entry, len(transcript))
	for i, e := range transcript {
		out[i] = EntryFrom(e)
	}
	return out
}

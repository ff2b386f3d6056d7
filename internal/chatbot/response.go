package chatbot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/attendbot/internal/students"
)

// Response is one of Message, Table, Detail or List.
type Response interface {
	response()
}

type Message struct {
	Text string
}

type Table struct {
	Rows []students.Record
}

type Detail struct {
	Detail students.Detail
}

type List struct {
	Entries []students.Entry
}

func (Message) response() {}
func (Table) response()   {}
func (Detail) response()  {}
func (List) response()    {}

// Reply is the outcome of a single command.
type Reply struct {
	Response Response
	// Changed is true when the command mutated the roster.
	Changed bool
}

func message(format string, args ...any) Reply {
	return Reply{Response: Message{Text: fmt.Sprintf(format, args...)}}
}

type jsonMark struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

type jsonDetail struct {
	students.Record
	PercentageText string     `json:"percentage_text"`
	History        []jsonMark `json:"history"`
}

type jsonRecord struct {
	students.Record
	PercentageText string `json:"percentage_text"`
}

type jsonResponse struct {
	Type     string           `json:"type"`
	Message  string           `json:"message,omitempty"`
	Rows     []jsonRecord     `json:"rows,omitempty"`
	Detail   *jsonDetail      `json:"detail,omitempty"`
	Students []students.Entry `json:"students,omitempty"`
}

// MarshalResponse encodes a response as a JSON object tagged by "type".
func MarshalResponse(r Response) ([]byte, error) {
	var out jsonResponse
	switch r := r.(type) {
	case Message:
		out = jsonResponse{Type: "message", Message: r.Text}
	case Table:
		out = jsonResponse{Type: "table", Rows: make([]jsonRecord, len(r.Rows))}
		for i, row := range r.Rows {
			out.Rows[i] = jsonRecord{Record: row, PercentageText: row.PercentageString()}
		}
	case Detail:
		detail := &jsonDetail{
			Record:         r.Detail.Record,
			PercentageText: r.Detail.PercentageString(),
			History:        make([]jsonMark, len(r.Detail.History)),
		}
		for i, m := range r.Detail.History {
			detail.History[i] = jsonMark{Date: m.Time, Status: m.Status.String()}
		}
		out = jsonResponse{Type: "detail", Detail: detail}
	case List:
		out = jsonResponse{Type: "list", Students: r.Entries}
	default:
		return nil, fmt.Errorf("unsupported response %T", r)
	}
	return json.Marshal(out)
}

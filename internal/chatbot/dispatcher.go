package chatbot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/attendbot/internal/students"
)

var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrMalformedArgument = errors.New("malformed argument")
)

type handler func(args []string) Reply

// Dispatcher routes single-line commands to roster operations.
type Dispatcher struct {
	roster   *students.Roster
	handlers map[string]handler
}

func NewDispatcher(roster *students.Roster) *Dispatcher {
	d := &Dispatcher{roster: roster}
	d.handlers = map[string]handler{
		"add":        d.handleAdd,
		"mark":       d.handleMark,
		"show":       d.handleShow,
		"attendance": d.handleAttendance,
		"list":       d.handleList,
		"help":       d.handleHelp,
		"delete":     d.handleDelete,
		"p":          d.handlePresent,
		"a":          d.handleAbsent,
	}
	return d
}

// Dispatch never fails: every problem with the input is reported as a Message.
// The whole line is lowercased before it is split, names included.
func (d *Dispatcher) Dispatch(input string) Reply {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(tokens) == 0 {
		return message("Please enter a command. Type 'help' for available commands.")
	}
	verb := tokens[0]
	h, err := d.route(verb)
	if err != nil {
		return message("Unknown command: '%s'. Type 'help' for available commands.", verb)
	}
	return h(tokens[1:])
}

func (d *Dispatcher) route(verb string) (handler, error) {
	h, ok := d.handlers[verb]
	if !ok {
		return nil, fmt.Errorf("%q: %w", verb, ErrUnknownCommand)
	}
	return h, nil
}

func parseRollNumber(value string) (students.RollNumber, error) {
	roll, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("roll number %q: %w", value, ErrMalformedArgument)
	}
	return students.RollNumber(roll), nil
}

const rollNumberNotNumber = "Roll number must be a number!"

// add student <name> <roll_number>
func (d *Dispatcher) handleAdd(args []string) Reply {
	if len(args) < 3 || args[0] != "student" {
		return message("Usage: add student <name> <roll_number>")
	}
	name := args[1]
	roll, err := parseRollNumber(args[2])
	if err != nil {
		return message(rollNumberNotNumber)
	}
	if err := d.roster.Add(name, roll); errors.Is(err, students.ErrDuplicateRollNumber) {
		return message("Roll number %d already exists!", roll)
	} else if err != nil {
		return message("Could not add student: %s", err)
	}
	return Reply{
		Response: Message{Text: fmt.Sprintf("Student %s (Roll: %d) added successfully!", name, roll)},
		Changed:  true,
	}
}

// mark <present|absent> <roll_number>
func (d *Dispatcher) handleMark(args []string) Reply {
	if len(args) < 2 {
		return message("Usage: mark <present|absent> <roll_number>")
	}
	roll, err := parseRollNumber(args[1])
	if err != nil {
		return message(rollNumberNotNumber)
	}
	return d.mark(roll, args[0])
}

func (d *Dispatcher) mark(roll students.RollNumber, status string) Reply {
	student, err := d.roster.Mark(roll, status)
	switch {
	case errors.Is(err, students.ErrNotFound):
		return message("Student with roll number %d not found!", roll)
	case errors.Is(err, students.ErrInvalidStatus):
		return message("Invalid status. Use 'present' or 'absent'.")
	case err != nil:
		return message("Could not mark attendance: %s", err)
	}
	return Reply{
		Response: Message{Text: fmt.Sprintf("Marked %s as %s!", student.Name, student.History[len(student.History)-1].Status)},
		Changed:  true,
	}
}

// p <roll_number> | p all
func (d *Dispatcher) handlePresent(args []string) Reply {
	if len(args) < 1 {
		return message("Usage: p <roll_number> or p all")
	}
	if args[0] == "all" {
		count := d.roster.MarkAll(students.StatusPresent)
		return Reply{
			Response: Message{Text: fmt.Sprintf("Marked all %d students as present!", count)},
			Changed:  count > 0,
		}
	}
	roll, err := parseRollNumber(args[0])
	if err != nil {
		return message(rollNumberNotNumber)
	}
	return d.mark(roll, "present")
}

// a <roll_number>
func (d *Dispatcher) handleAbsent(args []string) Reply {
	if len(args) < 1 {
		return message("Usage: a <roll_number>")
	}
	roll, err := parseRollNumber(args[0])
	if err != nil {
		return message(rollNumberNotNumber)
	}
	return d.mark(roll, "absent")
}

// show [attendance]
func (d *Dispatcher) handleShow(_ []string) Reply {
	records := d.roster.Records()
	if len(records) == 0 {
		return message("No students in the system yet.")
	}
	return Reply{Response: Table{Rows: records}}
}

// attendance of <roll_number>
func (d *Dispatcher) handleAttendance(args []string) Reply {
	if len(args) < 2 || args[0] != "of" {
		return message("Usage: attendance of <roll_number>")
	}
	roll, err := parseRollNumber(args[1])
	if err != nil {
		return message(rollNumberNotNumber)
	}
	detail, err := d.roster.Detail(roll)
	if err != nil {
		return message("No student found with roll number %d", roll)
	}
	return Reply{Response: Detail{Detail: detail}}
}

func (d *Dispatcher) handleList(_ []string) Reply {
	entries := d.roster.List()
	if len(entries) == 0 {
		return message("No students in the system yet.")
	}
	return Reply{Response: List{Entries: entries}}
}

// delete <roll_number>
func (d *Dispatcher) handleDelete(args []string) Reply {
	if len(args) < 1 {
		return message("Usage: delete <roll_number>")
	}
	roll, err := parseRollNumber(args[0])
	if err != nil {
		return message(rollNumberNotNumber)
	}
	student, err := d.roster.Delete(roll)
	if err != nil {
		return message("Student with roll number %d not found!", roll)
	}
	return Reply{
		Response: Message{Text: fmt.Sprintf("Student %s deleted successfully!", student.Name)},
		Changed:  true,
	}
}

func (d *Dispatcher) handleHelp(_ []string) Reply {
	return Reply{Response: Message{Text: HelpText}}
}

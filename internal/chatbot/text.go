package chatbot

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/attendbot/internal/students"
)

// FormatText renders a response as plain text with aligned columns.
// History timestamps are shown in location.
func FormatText(r Response, location *time.Location) string {
	var b strings.Builder
	switch r := r.(type) {
	case Message:
		b.WriteString(r.Text)
	case Table:
		b.WriteString("Here's the attendance data:\n")
		w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Roll\tName\tTotal\tPresent\tAbsent\tAttendance")
		for _, row := range r.Rows {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n", row.RollNumber, row.Name, row.TotalClasses, row.Present, row.Absent, row.PercentageString())
		}
		w.Flush()
	case Detail:
		d := r.Detail
		fmt.Fprintf(&b, "Attendance record for %s (Roll: %d):\n", d.Name, d.RollNumber)
		fmt.Fprintf(&b, "Total classes: %d\nPresent: %d\nAbsent: %d\nAttendance: %s\n", d.TotalClasses, d.Present, d.Absent, d.PercentageString())
		if len(d.History) > 0 {
			b.WriteString("History:\n")
			w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
			for _, m := range d.History {
				fmt.Fprintf(w, "%s\t%s\n", m.Time.In(location).Format(students.DateLayout), m.Status)
			}
			w.Flush()
		}
	case List:
		b.WriteString("Enrolled students:\n")
		w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Roll\tName")
		for _, e := range r.Entries {
			fmt.Fprintf(w, "%d\t%s\n", e.RollNumber, e.Name)
		}
		w.Flush()
	default:
		fmt.Fprintf(&b, "unsupported response %T", r)
	}
	return strings.TrimRight(b.String(), "\n")
}

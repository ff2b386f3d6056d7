package statistics

// Summary mirrors the quick stats panel of the chat page.
type Summary struct {
	TotalStudents int `json:"total_students"`
	// SessionsHeld is the highest number of classes any student was marked for.
	SessionsHeld  int `json:"sessions_held"`
	PresentLatest int `json:"present_latest"`
	AbsentLatest  int `json:"absent_latest"`
	// Overall is the attendance percentage over students with at least one mark.
	Overall float64 `json:"overall"`
	// Marked is false until some student has been marked.
	Marked bool `json:"marked"`
}

type Month struct {
	Total   int `json:"total"`
	Present int `json:"present"`
}

type Year struct {
	Year   int     `json:"year"`
	Total  int     `json:"total"`
	Months []Month `json:"months"`
	// Students are sorted by present marks, most first.
	Students []Student `json:"students"`
}

type Student struct {
	Name    string `json:"name"`
	Present int    `json:"present"`
}

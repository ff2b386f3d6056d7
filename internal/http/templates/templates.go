package templates

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/attendbot/internal/sessions"
	"github.com/attendbot/internal/statistics"
)

type Renderer interface {
	RenderChatPage(io.Writer, ChatData) error
}

type ChatData struct {
	Entries  []Entry
	Summary  statistics.Summary
	Location *time.Location
}

var funcs = template.FuncMap{
	"formatTime": func(t time.Time, location *time.Location) string {
		return t.In(location).Format("2006-01-02 15:04")
	},
	"isUser": func(role sessions.Role) bool {
		return role == sessions.RoleUser
	},
}

func parse(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(fsys, "*.html.gotmpl")
}

//go:embed *.html.gotmpl
var embedFS embed.FS

var _ Renderer = &EmbedTemplates{}

type EmbedTemplates struct {
	t *template.Template
}

func NewEmbedTemplates() *EmbedTemplates {
	return &EmbedTemplates{
		t: template.Must(parse(embedFS)),
	}
}

func (e *EmbedTemplates) RenderChatPage(w io.Writer, data ChatData) error {
	return e.t.ExecuteTemplate(w, "chat.html.gotmpl", data)
}

var _ Renderer = &FilesystemTemplates{}

// FilesystemTemplates parses templates on every render.
type FilesystemTemplates struct {
	fsys fs.FS
}

func NewFilesystemTemplates(path string) *FilesystemTemplates {
	return &FilesystemTemplates{
		fsys: os.DirFS(path),
	}
}

func (f *FilesystemTemplates) RenderChatPage(w io.Writer, data ChatData) error {
	t, err := parse(f.fsys)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, "chat.html.gotmpl", data)
}

package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/justestif/spotify-playlist-relay/internal/spotify"
)

// Templates holds one parsed set per page, each combined with every layout and partial.
type Templates struct {
	pages map[string]*template.Template
}

// NewTemplates parses layouts/, partials/ and pages/ from templatesFS.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	shared, err := globAll(templatesFS, "layouts/*.html", "partials/*.html")
	if err != nil {
		return nil, err
	}
	pages, err := globAll(templatesFS, "pages/*.html")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, errors.New("no page templates found")
	}

	t := &Templates{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		files := append([]string{page}, shared...)

		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes the "base" layout of page into a buffer, so a failing
// template never leaves a half-written response.
func (t *Templates) Render(page string, data any) (*bytes.Buffer, error) {
	tmpl, ok := t.pages[page]
	if !ok {
		return nil, fmt.Errorf("template %q not found", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", page, err)
	}
	return &buf, nil
}

func globAll(fsys fs.FS, patterns ...string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("finding %s: %w", pattern, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}

var funcs = template.FuncMap{
	"lower": strings.ToLower,
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	User        *UserData
	Flash       *FlashMessage
	CurrentPath string
}

// UserData contains authenticated user information.
type UserData struct {
	ID   string
	Name string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	LoginURL string
}

// MessagePageData contains data for the result and error pages.
type MessagePageData struct {
	PageData
	Heading  string
	Lines    []string
	Playlist *spotify.Playlist
	LinkText string
}

// Package view renders the server-side HTML pages from an embedded
// template set. Every page shares the layout template, which shows the
// one-shot notices and the navigation for the current session state.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/patric-chuzhbe/artcls/internal/flash"
	"github.com/patric-chuzhbe/artcls/internal/models"
	"github.com/patric-chuzhbe/artcls/internal/service"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageNames = []string{
	"home",
	"about",
	"articles",
	"article",
	"article_not_found",
	"register",
	"login",
	"dashboard",
	"add_article",
	"edit_article",
}

// Data is the view model handed to every page template. Unused fields are
// left zero; the single-article page branches on Article explicitly rather
// than dereferencing a value it did not check.
type Data struct {
	Title       string
	Username    string
	Notices     []flash.Notice
	Error       string
	Msg         string
	Articles    []models.Article
	Article     *models.Article
	Form        map[string]string
	FieldErrors service.FieldErrors
}

// Views is the parsed template set keyed by page name.
type Views struct {
	pages map[string]*template.Template
}

// New parses the embedded templates. Each page is parsed together with the
// shared layout.
func New() (*Views, error) {
	pages := map[string]*template.Template{}
	for _, name := range pageNames {
		parsed, err := template.ParseFS(
			templateFS,
			"templates/layout.gohtml",
			"templates/"+name+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("error while parsing the %q page template: %w", name, err)
		}
		pages[name] = parsed
	}

	return &Views{pages: pages}, nil
}

// Render writes the page with the given status code.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data Data) error {
	tmpl, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	return tmpl.ExecuteTemplate(w, "layout", data)
}

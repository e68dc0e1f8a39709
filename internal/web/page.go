package web

import (
	"embed"
	"html/template"
	"io"
	"sync"

	"school-meal/internal/meal"
)

//go:embed templates/index.gohtml
var templatesFS embed.FS

// PageView is the rendered content of the four page sections. Exactly one
// section is visible once a state has been rendered, none before.
type PageView struct {
	Kind         meal.Kind
	ErrorMessage string
	ErrorDetails string
	Title        string
	Items        []string
}

// Hidden reports whether the section with the given element id is hidden.
func (v PageView) Hidden(sectionID string) bool {
	return v.Kind == "" || meal.SectionID(v.Kind) != sectionID
}

// Page holds the current view and renders it as HTML. It implements
// app.Renderer. Text reaches the page through html/template, so API
// supplied strings are always escaped.
type Page struct {
	tmpl *template.Template

	mu   sync.RWMutex
	view PageView
}

// NewPage parses the embedded template.
func NewPage() (*Page, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.gohtml")
	if err != nil {
		return nil, err
	}
	return &Page{tmpl: tmpl}, nil
}

// Render swaps the page to show the view for s.
func (p *Page) Render(s meal.State) {
	v := PageView{Kind: s.Kind()}
	switch st := s.(type) {
	case meal.Error:
		v.ErrorMessage = st.Message
		v.ErrorDetails = st.Details
	case meal.MealList:
		v.Title = st.Title()
		v.Items = st.Items
	}

	p.mu.Lock()
	p.view = v
	p.mu.Unlock()
}

// View returns a snapshot of the current view.
func (p *Page) View() PageView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view
}

// Execute writes the page with date preselected in the date input.
func (p *Page) Execute(w io.Writer, date string) error {
	v := p.View()
	return p.tmpl.Execute(w, struct {
		Date    string
		View    PageView
		Refresh bool
	}{
		Date:    date,
		View:    v,
		Refresh: v.Kind == meal.KindLoading,
	})
}

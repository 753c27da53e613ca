// Package webui serves the dashboard as a local web page. It is a thin
// rendering adapter: handlers translate form posts into controller
// operations and templates translate view snapshots into HTML. All
// user-supplied text flows through html/template's contextual escaping.
package webui

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/lueurxax/chat-insight/internal/dashboard"
	"github.com/lueurxax/chat-insight/internal/daterange"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer handles HTML template rendering.
type Renderer struct {
	dashboardTmpl *template.Template
	errorTmpl     *template.Template
}

// NewRenderer creates a new template renderer.
func NewRenderer() (*Renderer, error) {
	dashboardTmpl, err := template.New("dashboard.html").ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}

	errorTmpl, err := template.New("error.html").ParseFS(templateFS, "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("parse error template: %w", err)
	}

	return &Renderer{
		dashboardTmpl: dashboardTmpl,
		errorTmpl:     errorTmpl,
	}, nil
}

// PresetOption is one entry of the date filter menu.
type PresetOption struct {
	Code   string
	Label  string
	Active bool
}

// PageData contains all data for rendering the dashboard page.
type PageData struct {
	View    dashboard.View
	Presets []PresetOption
	Errors  []string
	Notice  string
}

// ErrorData contains data for rendering error pages.
type ErrorData struct {
	Code    int
	Title   string
	Message string
}

// BuildPageData assembles template data from a view snapshot. Failed
// operation states become inline error lines; the preset menu marks the
// active filter.
func BuildPageData(view dashboard.View, notice string) PageData {
	presets := make([]PresetOption, 0, len(daterange.Presets()))

	for _, p := range daterange.Presets() {
		presets = append(presets, PresetOption{
			Code:   string(p),
			Label:  p.Label(),
			Active: p == view.Preset,
		})
	}

	var errs []string

	for _, op := range []dashboard.Operation{
		dashboard.OpLoadChats,
		dashboard.OpAnalyze,
		dashboard.OpReply,
		dashboard.OpDownload,
		dashboard.OpKnowledge,
		dashboard.OpStats,
		dashboard.OpAuth,
	} {
		if st := view.OpState(op); st.Status == dashboard.StatusFailed {
			errs = append(errs, st.Err)
		}
	}

	return PageData{
		View:    view,
		Presets: presets,
		Errors:  errs,
		Notice:  notice,
	}
}

// RenderDashboard renders the dashboard page.
func (r *Renderer) RenderDashboard(w io.Writer, data PageData) error {
	if err := r.dashboardTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute dashboard template: %w", err)
	}

	return nil
}

// RenderError renders an error page.
func (r *Renderer) RenderError(w io.Writer, data *ErrorData) error {
	if err := r.errorTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute error template: %w", err)
	}

	return nil
}

// ABOUTME: TemplateEngine loads embedded HTML templates and renders them with Go's html/template.
// ABOUTME: Page templates share a layout; partials are also rendered standalone for fetch responses.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

// markdown renders page markdown blocks. Raw HTML in the source is omitted by
// goldmark's default renderer.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// TemplateEngine loads and renders embedded HTML templates.
type TemplateEngine struct {
	templates map[string]*template.Template
	partials  *template.Template
}

// templateFuncs returns the FuncMap available to all templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": markdownToHTML,
	}
}

// markdownToHTML converts a markdown string to HTML using goldmark.
func markdownToHTML(input string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}

// NewTemplateEngine parses all embedded templates and returns a ready-to-use engine.
// Each page template is parsed together with the layout and partials.
func NewTemplateEngine() (*TemplateEngine, error) {
	funcs := templateFuncs()

	pages := []string{
		"page.html",
		"submission.html",
		"error.html",
	}

	engine := &TemplateEngine{
		templates: make(map[string]*template.Template),
	}

	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		engine.templates[page] = t
	}

	partials, err := template.New("partials.html").Funcs(funcs).ParseFS(templateFS, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parsing partials: %w", err)
	}
	engine.partials = partials

	return engine, nil
}

// Render executes the named page template inside the layout and writes the
// result to w with the given status.
func (e *TemplateEngine) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := e.RenderTo(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderTo executes the named page template with the given data and writes
// the result to an arbitrary io.Writer.
func (e *TemplateEngine) RenderTo(w io.Writer, name string, data any) error {
	t, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// RenderPartial executes a partial defined in partials.html without the layout.
func (e *TemplateEngine) RenderPartial(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := e.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering partial %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

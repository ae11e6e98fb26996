// ABOUTME: Page handlers that turn stored CMS blocks into template views.
// ABOUTME: Rich text is rendered in element mode through the render cache.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/2389-research/pulse/config"
	"github.com/2389-research/pulse/content"
	"github.com/2389-research/pulse/render"
	"github.com/2389-research/pulse/richtext"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// descriptionLimit caps generated meta descriptions.
const descriptionLimit = 160

// PageData holds all data passed to page templates.
type PageData struct {
	Site        *config.Site
	Title       string
	Description string
	Blocks      []BlockView
	Legal       template.HTML
	Submission  *SubmissionView
	Status      int
	Message     string
}

// BlockView is a page block ready for the template.
type BlockView struct {
	Type       content.BlockType
	Heading    string
	Subheading string
	ImageURL   string
	Title      string
	Open       bool
	Markdown   string
	HTML       template.HTML
	Form       *FormView
}

// FormView is an embedded form.
type FormView struct {
	Slug        string
	Title       string
	SubmitLabel string
	Fields      []content.Field
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, "home")
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, chi.URLParam(r, "slug"))
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, slug string) {
	ctx := r.Context()

	page, err := s.store.GetPage(ctx, slug)
	if errors.Is(err, content.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	blocks, err := s.blockViews(ctx, page.Blocks)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := s.pageData(ctx, page.Title)
	data.Description = metaDescription(page)
	data.Blocks = blocks
	if err := s.templates.Render(w, http.StatusOK, "page.html", data); err != nil {
		s.log.WithError(err).WithField("slug", slug).Error("rendering page")
	}
}

// pageData fills the fields every page template needs.
func (s *Server) pageData(ctx context.Context, title string) PageData {
	legal, err := s.renderHTML(ctx, s.site.Legal)
	if err != nil {
		s.log.WithError(err).Warn("rendering legal footer")
	}
	return PageData{
		Site:   s.site,
		Title:  title,
		Legal:  legal,
		Status: http.StatusOK,
	}
}

// renderError writes the error page with the given status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := s.pageData(r.Context(), http.StatusText(status))
	data.Status = status
	data.Message = message
	if err := s.templates.Render(w, status, "error.html", data); err != nil {
		s.log.WithError(err).Error("rendering error page")
		http.Error(w, message, status)
	}
}

// renderHTML renders a rich-text document in element mode.
func (s *Server) renderHTML(ctx context.Context, raw []byte) (template.HTML, error) {
	if len(raw) == 0 {
		return "", nil
	}
	out, err := s.cache.Render(ctx, raw, render.ModeHTML, render.Options{})
	if err != nil {
		return "", err
	}
	// Element mode escapes every text node and attribute.
	return template.HTML(out), nil
}

// blockViews converts stored blocks to views. Form blocks whose form no
// longer exists are dropped with a warning.
func (s *Server) blockViews(ctx context.Context, blocks []content.Block) ([]BlockView, error) {
	views := make([]BlockView, 0, len(blocks))
	for _, b := range blocks {
		v := BlockView{
			Type:       b.Type,
			Heading:    b.Heading,
			Subheading: b.Subheading,
			ImageURL:   b.ImageURL,
			Title:      b.Title,
			Open:       b.Open,
		}
		switch b.Type {
		case content.BlockRichText, content.BlockCollapsible:
			html, err := s.renderHTML(ctx, b.Content)
			if err != nil {
				return nil, err
			}
			v.HTML = html
		case content.BlockMarkdown:
			v.Markdown = b.Body
		case content.BlockForm:
			form, err := s.store.GetForm(ctx, b.FormSlug)
			if errors.Is(err, content.ErrNotFound) {
				s.log.WithField("form", b.FormSlug).Warn("page references missing form")
				continue
			}
			if err != nil {
				return nil, err
			}
			v.Form = &FormView{
				Slug:        form.Slug,
				Title:       form.Title,
				SubmitLabel: form.SubmitLabel,
				Fields:      form.Fields,
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// metaDescription prefers the page description, then an excerpt of the first
// rich-text block that has any text.
func metaDescription(p *content.Page) string {
	if p.Description != "" {
		return p.Description
	}
	for _, b := range p.Blocks {
		if b.Type != content.BlockRichText {
			continue
		}
		if excerpt := richtext.Excerpt(richtext.ParseDocument(b.Content), descriptionLimit); excerpt != "" {
			return excerpt
		}
	}
	return ""
}

// logFields returns the standard fields for a page-level log entry.
func logFields(r *http.Request) logrus.Fields {
	return logrus.Fields{"method": r.Method, "path": r.URL.Path}
}

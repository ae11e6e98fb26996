// ABOUTME: Form submission and submission detail handlers.
// ABOUTME: Confirmations are rendered once as snapshot HTML, stored, and sanitized whenever shown.
package web

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/2389-research/pulse/content"
	"github.com/2389-research/pulse/render"
	"github.com/2389-research/pulse/richtext"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// maxFormBody caps form submission bodies.
const maxFormBody = 64 << 10

// SubmissionView is a stored submission prepared for display.
type SubmissionView struct {
	ID           string
	FormSlug     string
	FormTitle    string
	CreatedAt    time.Time
	Fields       []SubmittedField
	Confirmation template.HTML
}

// SubmittedField is one answered field, in form order.
type SubmittedField struct {
	Label string
	Value string
}

type submissionResponse struct {
	ID               string `json:"id"`
	Form             string `json:"form"`
	ConfirmationHTML string `json:"confirmationHtml"`
	DetailsURL       string `json:"detailsUrl"`
}

type formErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	if !s.limiter.Allow(clientKey(r)) {
		w.Header().Set("Retry-After", "60")
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		if isMaxBytesError(err) {
			http.Error(w, "form submission too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	form, err := s.store.GetForm(ctx, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		if v := strings.TrimSpace(r.PostForm.Get(f.Name)); v != "" {
			data[f.Name] = v
		}
	}

	if missing := form.MissingFields(data); len(missing) > 0 {
		msg := "missing required fields: " + strings.Join(missing, ", ")
		if wantsJSON(r) {
			writeJSON(w, http.StatusBadRequest, formErrorResponse{Error: msg, Missing: missing})
			return
		}
		if err := s.templates.RenderPartial(w, http.StatusBadRequest, "form_error", msg); err != nil {
			s.log.WithError(err).Error("rendering form error")
		}
		return
	}

	var opts render.Options
	if form.ConfirmationHeading != "" {
		opts.FixedHeading = richtext.ParseHeadingTag(form.ConfirmationHeading)
	}
	snapshot, err := s.cache.Render(ctx, form.Confirmation, render.ModeSnapshot, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sub := &content.Submission{
		FormSlug:         form.Slug,
		Data:             data,
		ConfirmationHTML: string(snapshot),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		s.fail(w, r, err)
		return
	}

	s.log.WithFields(logFields(r)).WithFields(logrus.Fields{
		"form":       form.Slug,
		"submission": sub.ID,
	}).Info("form submitted")

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, submissionResponse{
			ID:               sub.ID,
			Form:             sub.FormSlug,
			ConfirmationHTML: sub.ConfirmationHTML,
			DetailsURL:       "/submissions/" + sub.ID,
		})
		return
	}
	if err := s.templates.RenderPartial(w, http.StatusCreated, "confirmation", s.submissionView(sub, form)); err != nil {
		s.log.WithError(err).Error("rendering confirmation")
	}
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub, err := s.store.GetSubmission(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, content.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, "Submission not found")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	form, err := s.store.GetForm(ctx, sub.FormSlug)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	view := s.submissionView(sub, form)
	if r.Header.Get("HX-Request") == "true" {
		if err := s.templates.RenderPartial(w, http.StatusOK, "submission_panel", view); err != nil {
			s.log.WithError(err).Error("rendering submission panel")
		}
		return
	}

	data := s.pageData(ctx, "Submission details")
	data.Submission = view
	if err := s.templates.Render(w, http.StatusOK, "submission.html", data); err != nil {
		s.log.WithError(err).Error("rendering submission page")
	}
}

// submissionView builds the display model. Answers are listed in form order
// under their field labels.
func (s *Server) submissionView(sub *content.Submission, form *content.Form) *SubmissionView {
	v := &SubmissionView{
		ID:        sub.ID,
		FormSlug:  sub.FormSlug,
		FormTitle: form.Title,
		CreatedAt: sub.CreatedAt,
		// The stored snapshot is unescaped HTML, so it is sanitized before use.
		Confirmation: template.HTML(s.sanitizer.Sanitize(sub.ConfirmationHTML)),
	}
	for _, f := range form.Fields {
		value, ok := sub.Data[f.Name]
		if !ok {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Name
		}
		v.Fields = append(v.Fields, SubmittedField{Label: label, Value: value})
	}
	return v
}

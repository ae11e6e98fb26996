// ABOUTME: JSON API for headless clients: page listing, page detail with rendered blocks, and ad hoc rendering.
// ABOUTME: Protected by an optional bearer token and served with CORS headers for configured origins.
package web

import (
	"crypto/subtle"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/2389-research/pulse/content"
	"github.com/2389-research/pulse/render"
	"github.com/2389-research/pulse/richtext"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// maxRenderBody caps documents posted to /api/render.
const maxRenderBody = 1 << 20

type apiPageSummary struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type apiBlock struct {
	content.Block
	HTML string `json:"html,omitempty"`
}

type apiPage struct {
	apiPageSummary
	Blocks []apiBlock `json:"blocks"`
}

func (s *Server) apiRouter(r chi.Router) {
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}).Handler)
	}
	if s.authToken != "" {
		r.Use(bearerAuth(s.authToken))
	}

	r.Get("/pages", s.handleAPIPages)
	r.Get("/pages/{slug}", s.handleAPIPage)
	r.Post("/render", s.handleAPIRender)
}

// bearerAuth rejects requests whose Authorization header does not carry token.
// CORS preflights pass through so browsers can discover the allowed headers.
func bearerAuth(token string) func(http.Handler) http.Handler {
	expected := "Bearer " + token
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="pulse"`)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func summarize(p *content.Page) apiPageSummary {
	return apiPageSummary{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (s *Server) handleAPIPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.store.ListPages(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]apiPageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, summarize(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := s.store.GetPage(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := apiPage{apiPageSummary: summarize(page), Blocks: make([]apiBlock, 0, len(page.Blocks))}
	for _, b := range page.Blocks {
		ab := apiBlock{Block: b}
		switch b.Type {
		case content.BlockRichText, content.BlockCollapsible:
			html, err := s.renderHTML(ctx, b.Content)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			ab.HTML = string(html)
		case content.BlockMarkdown:
			ab.HTML = string(markdownToHTML(b.Body))
		}
		out.Blocks = append(out.Blocks, ab)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAPIRender renders the posted document. Query parameters: mode
// (html, snapshot, text) and heading (fixed heading level for snapshot).
// Malformed documents render to an empty body like everywhere else.
//
// Output is always served as text/plain with nosniff. Snapshot output is
// unescaped, so the browser must never treat it as a page of this origin.
// Requiring a JSON body keeps plain cross-site form posts out.
func (s *Server) handleAPIRender(w http.ResponseWriter, r *http.Request) {
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		http.Error(w, "request body must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	mode, err := render.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var opts render.Options
	if h := r.URL.Query().Get("heading"); h != "" {
		opts.FixedHeading = richtext.ParseHeadingTag(h)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRenderBody))
	if err != nil {
		if isMaxBytesError(err) {
			http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	out, err := s.cache.Render(r.Context(), body, mode, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(out)
}

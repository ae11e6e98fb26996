// ABOUTME: Shared fixtures for web tests: a seeded SQLite store and a configured server.
// ABOUTME: Seeds one form and two pages covering every block type.
package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389-research/pulse/config"
	"github.com/2389-research/pulse/content"
	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

const (
	trialConfirmation = `{"root":{"children":[` +
		`{"type":"heading","tag":"h1","children":[{"type":"text","text":"Booked"}]},` +
		`{"type":"paragraph","children":[{"type":"text","text":"See you soon","format":1},{"type":"linebreak"}]}]}}`
	homeRichText  = `{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"Strength classes for every body","format":2}]}]}}`
	policyContent = `{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"Cancel early"}]}]}}`
	legalContent  = `{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"© Pulse Studio"}]}]}}`
)

func testSeed() *content.Seed {
	return &content.Seed{
		Forms: []content.SeedForm{{
			Slug:        "trial",
			Title:       "Free trial",
			SubmitLabel: "Book",
			Fields: []content.Field{
				{Name: "name", Label: "Full name", Type: content.FieldText, Required: true},
				{Name: "email", Label: "Email", Type: content.FieldEmail, Required: true},
				{Name: "notes", Label: "Notes", Type: content.FieldTextarea},
			},
			Confirmation:        trialConfirmation,
			ConfirmationHeading: "h3",
		}},
		Pages: []content.SeedPage{
			{
				Slug:  "home",
				Title: "Pulse Studio",
				Blocks: []content.SeedBlock{
					{Type: content.BlockHero, Heading: "Move well", Subheading: "Small classes", ImageURL: "/media/hero.jpg"},
					{Type: content.BlockRichText, Content: homeRichText},
					{Type: content.BlockMarkdown, Body: "**Drop-ins** welcome"},
					{Type: content.BlockCollapsible, Title: "Policy", Open: true, Content: policyContent},
					{Type: content.BlockForm, FormSlug: "trial"},
				},
			},
			{Slug: "about", Title: "About", Description: "About the studio"},
		},
	}
}

func testSite() *config.Site {
	site, _ := config.ParseSite([]byte(`
brand: Pulse Studio
tagline: Move well
nav:
  - label: About
    href: /about
floatingActions:
  - label: Book now
    href: /#trial
legal: '` + legalContent + `'
`))
	return site
}

type testEnv struct {
	srv   *Server
	store *content.Store
	logs  *logtest.Hook
}

func newTestEnv(t *testing.T, mutate ...func(*ServerConfig)) *testEnv {
	t.Helper()
	store, err := content.Open(filepath.Join(t.TempDir(), "pulse.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := store.ApplySeed(context.Background(), testSeed()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := ServerConfig{
		Addr:   "127.0.0.1:0",
		Store:  store,
		Site:   testSite(),
		Logger: logger,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("unexpected error creating server: %v", err)
	}
	return &testEnv{srv: srv, store: store, logs: hook}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func formRequest(path string, values url.Values, accept string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

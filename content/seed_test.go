// ABOUTME: Tests for YAML seed parsing and application to the store.
package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/2389-research/pulse/richtext"
)

func TestLoadSeedFile(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.LoadSeedFile(ctx, "testdata/seed.yaml")
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if res.Pages != 2 || res.Forms != 1 {
		t.Errorf("expected 2 pages and 1 form, got %+v", res)
	}

	home, err := s.GetPage(ctx, "home")
	if err != nil {
		t.Fatalf("get home: %v", err)
	}
	if len(home.Blocks) != 3 {
		t.Fatalf("expected 3 home blocks, got %d", len(home.Blocks))
	}
	doc := richtext.ParseDocument(home.Blocks[1].Content)
	if got := string(richtext.RenderHTML(doc)); got != "<p>Your first class is on us.</p>" {
		t.Errorf("unexpected rich text block render %q", got)
	}

	legal, err := s.GetPage(ctx, "legal")
	if err != nil {
		t.Fatalf("get legal: %v", err)
	}
	if got := richtext.RenderPlainText(richtext.ParseDocument(legal.Blocks[0].Content)); got != "Cancel 12 hours ahead." {
		t.Errorf("unexpected collapsible content %q", got)
	}

	form, err := s.GetForm(ctx, "free-trial")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if len(form.Fields) != 3 || !form.Fields[0].Required || form.Fields[2].Type != FieldTextarea {
		t.Errorf("unexpected form fields %+v", form.Fields)
	}
	snap := richtext.RenderSnapshot(richtext.ParseDocument(form.Confirmation), richtext.WithFixedHeading(richtext.TagH3))
	want := "<h3>You're in!</h3><p>See you on the mat. <strong>Arrive 10 minutes early.</strong></p>"
	if snap != want {
		t.Errorf("confirmation snapshot = %q, want %q", snap, want)
	}
}

func TestLoadSeedFileIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadSeedFile(ctx, "testdata/seed.yaml"); err != nil {
		t.Fatalf("first load: %v", err)
	}
	before, _ := s.GetPage(ctx, "home")
	if _, err := s.LoadSeedFile(ctx, "testdata/seed.yaml"); err != nil {
		t.Fatalf("second load: %v", err)
	}
	after, _ := s.GetPage(ctx, "home")
	if before.ID != after.ID {
		t.Errorf("expected reseeding to keep page ID %q, got %q", before.ID, after.ID)
	}
	pages, _ := s.ListPages(ctx)
	if len(pages) != 2 {
		t.Errorf("expected 2 pages after reseed, got %d", len(pages))
	}
}

func TestParseSeedRejectsUnknownKeys(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("pages:\n  - slug: a\n    titel: typo\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseSeedEmpty(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seed.Pages) != 0 || len(seed.Forms) != 0 {
		t.Errorf("expected empty seed, got %+v", seed)
	}
}

func TestApplySeedInvalidJSONString(t *testing.T) {
	s := openTestStore(t)
	seed := &Seed{Pages: []SeedPage{{
		Slug:   "bad",
		Title:  "Bad",
		Blocks: []SeedBlock{{Type: BlockRichText, Content: "{not json"}},
	}}}
	if _, err := s.ApplySeed(context.Background(), seed); err == nil {
		t.Fatal("expected error for invalid rich text JSON string")
	}
}

func TestApplySeedIsAllOrNothing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed := &Seed{
		Forms: []SeedForm{{
			Slug:   "waitlist",
			Title:  "Waitlist",
			Fields: []Field{{Name: "email", Label: "Email", Type: FieldEmail, Required: true}},
		}},
		Pages: []SeedPage{
			{Slug: "good", Title: "Good"},
			{Slug: "broken", Title: "Broken", Blocks: []SeedBlock{{Type: "carousel"}}},
		},
	}

	if _, err := s.ApplySeed(ctx, seed); err == nil {
		t.Fatal("expected error for unknown block type")
	}
	if _, err := s.GetForm(ctx, "waitlist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected form from failed seed to be rolled back, got %v", err)
	}
	if _, err := s.GetPage(ctx, "good"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected page from failed seed to be rolled back, got %v", err)
	}

	seed.Pages = seed.Pages[:1]
	res, err := s.ApplySeed(ctx, seed)
	if err != nil {
		t.Fatalf("apply fixed seed: %v", err)
	}
	if res.Pages != 1 || res.Forms != 1 {
		t.Errorf("expected 1 page and 1 form, got %+v", res)
	}
}

func TestLoadSampleSeed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res, err := s.LoadSeedFile(ctx, "../sample/seed.yaml")
	if err != nil {
		t.Fatalf("load sample seed: %v", err)
	}
	if res.Pages != 3 || res.Forms != 1 {
		t.Errorf("expected 3 pages and 1 form, got %+v", res)
	}

	form, err := s.GetForm(ctx, "free-trial")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	got := richtext.RenderSnapshot(richtext.ParseDocument(form.Confirmation), richtext.WithFixedHeading(richtext.HeadingTag(form.ConfirmationHeading)))
	if !strings.HasPrefix(got, "<h3>You're booked in!</h3>") {
		t.Errorf("unexpected confirmation snapshot %q", got)
	}
	if !strings.Contains(got, "<ol><li>Arrive 10 minutes early</li>") {
		t.Errorf("expected ordered list in snapshot, got %q", got)
	}
}

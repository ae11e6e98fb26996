// ABOUTME: Loads pages and forms from a YAML seed file into the store.
// ABOUTME: Rich-text documents may be written as YAML maps or JSON strings; both are stored as JSON.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML seed file layout.
type Seed struct {
	Pages []SeedPage `yaml:"pages"`
	Forms []SeedForm `yaml:"forms"`
}

// SeedPage mirrors Page with YAML-friendly rich-text fields.
type SeedPage struct {
	Slug        string      `yaml:"slug"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Blocks      []SeedBlock `yaml:"blocks"`
}

// SeedBlock mirrors Block.
type SeedBlock struct {
	Type       BlockType `yaml:"blockType"`
	Heading    string    `yaml:"heading"`
	Subheading string    `yaml:"subheading"`
	ImageURL   string    `yaml:"imageUrl"`
	Body       string    `yaml:"body"`
	Content    any       `yaml:"content"`
	Title      string    `yaml:"title"`
	Open       bool      `yaml:"open"`
	FormSlug   string    `yaml:"form"`
}

// SeedForm mirrors Form.
type SeedForm struct {
	Slug                string  `yaml:"slug"`
	Title               string  `yaml:"title"`
	SubmitLabel         string  `yaml:"submitLabel"`
	Fields              []Field `yaml:"fields"`
	Confirmation        any     `yaml:"confirmation"`
	ConfirmationHeading string  `yaml:"confirmationHeading"`
}

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	Pages int
	Forms int
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	return &seed, nil
}

// LoadSeedFile parses the seed file at path and applies it to the store.
func (s *Store) LoadSeedFile(ctx context.Context, path string) (SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedResult{}, fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	seed, err := ParseSeed(f)
	if err != nil {
		return SeedResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return s.ApplySeed(ctx, seed)
}

// ApplySeed upserts every form, then every page, in one transaction: either
// the whole seed is applied or none of it is. Forms go first so that form
// blocks reference existing forms.
func (s *Store) ApplySeed(ctx context.Context, seed *Seed) (SeedResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := applySeed(ctx, tx, seed)
	if err != nil {
		return SeedResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("commit seed: %w", err)
	}
	return res, nil
}

func applySeed(ctx context.Context, db execer, seed *Seed) (SeedResult, error) {
	var res SeedResult
	for _, sf := range seed.Forms {
		confirmation, err := richTextJSON(sf.Confirmation)
		if err != nil {
			return res, fmt.Errorf("form %q confirmation: %w", sf.Slug, err)
		}
		f := &Form{
			Slug:                sf.Slug,
			Title:               sf.Title,
			SubmitLabel:         sf.SubmitLabel,
			Fields:              sf.Fields,
			Confirmation:        confirmation,
			ConfirmationHeading: sf.ConfirmationHeading,
		}
		if err := upsertForm(ctx, db, f); err != nil {
			return res, err
		}
		res.Forms++
	}

	for _, sp := range seed.Pages {
		p := &Page{
			Slug:        sp.Slug,
			Title:       sp.Title,
			Description: sp.Description,
		}
		for i, sb := range sp.Blocks {
			c, err := richTextJSON(sb.Content)
			if err != nil {
				return res, fmt.Errorf("page %q block %d content: %w", sp.Slug, i, err)
			}
			p.Blocks = append(p.Blocks, Block{
				Type:       sb.Type,
				Heading:    sb.Heading,
				Subheading: sb.Subheading,
				ImageURL:   sb.ImageURL,
				Body:       sb.Body,
				Content:    c,
				Title:      sb.Title,
				Open:       sb.Open,
				FormSlug:   sb.FormSlug,
			})
		}
		if err := upsertPage(ctx, db, p); err != nil {
			return res, err
		}
		res.Pages++
	}
	return res, nil
}

// richTextJSON converts a decoded YAML value to JSON. Strings are taken to be
// JSON already and must be valid.
func richTextJSON(v any) (json.RawMessage, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if !json.Valid([]byte(t)) {
			return nil, fmt.Errorf("rich text string is not valid JSON")
		}
		return json.RawMessage(t), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encode rich text: %w", err)
		}
		return b, nil
	}
}

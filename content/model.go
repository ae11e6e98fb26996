// ABOUTME: Content model for CMS pages, page blocks, forms, and stored form submissions.
// ABOUTME: Rich-text fields are kept as raw editor JSON and only parsed at render time.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned when a page, form, or submission does not exist.
var ErrNotFound = errors.New("content not found")

// BlockType discriminates page blocks.
type BlockType string

const (
	BlockHero        BlockType = "hero"
	BlockRichText    BlockType = "richText"
	BlockMarkdown    BlockType = "markdown"
	BlockCollapsible BlockType = "collapsible"
	BlockForm        BlockType = "form"
)

// Block is one section of a page. Which fields are meaningful depends on Type.
type Block struct {
	Type       BlockType       `json:"blockType"`
	Heading    string          `json:"heading,omitempty"`
	Subheading string          `json:"subheading,omitempty"`
	ImageURL   string          `json:"imageUrl,omitempty"`
	Body       string          `json:"body,omitempty"`
	Content    json.RawMessage `json:"content,omitempty"`
	Title      string          `json:"title,omitempty"`
	Open       bool            `json:"open,omitempty"`
	FormSlug   string          `json:"form,omitempty"`
}

// Page is a routable CMS page.
type Page struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Blocks      []Block   `json:"blocks"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FieldType is the input type of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
)

// Field is one input on a form.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
}

// Form is a lead-capture or booking form. Confirmation is a rich-text document
// shown (and stored) after a successful submission.
type Form struct {
	ID                  string          `json:"id"`
	Slug                string          `json:"slug"`
	Title               string          `json:"title"`
	SubmitLabel         string          `json:"submitLabel,omitempty"`
	Fields              []Field         `json:"fields"`
	Confirmation        json.RawMessage `json:"confirmation,omitempty"`
	ConfirmationHeading string          `json:"confirmationHeading,omitempty"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Submission is a stored form entry. ConfirmationHTML is the snapshot rendered
// at submission time and is never re-rendered.
type Submission struct {
	ID               string            `json:"id"`
	FormSlug         string            `json:"form"`
	Data             map[string]string `json:"data"`
	ConfirmationHTML string            `json:"confirmationHtml"`
	CreatedAt        time.Time         `json:"createdAt"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug rejects slugs that are not lowercase kebab-case.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug must not be empty")
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug %q must be lowercase letters, digits, and single hyphens", slug)
	}
	return nil
}

// Validate checks that a page can be stored.
func (p *Page) Validate() error {
	if err := ValidateSlug(p.Slug); err != nil {
		return err
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("page %q: title must not be empty", p.Slug)
	}
	for i, b := range p.Blocks {
		switch b.Type {
		case BlockHero, BlockRichText, BlockMarkdown, BlockCollapsible:
		case BlockForm:
			if b.FormSlug == "" {
				return fmt.Errorf("page %q block %d: form block needs a form slug", p.Slug, i)
			}
		default:
			return fmt.Errorf("page %q block %d: unknown block type %q", p.Slug, i, b.Type)
		}
	}
	return nil
}

// Validate checks that a form can be stored.
func (f *Form) Validate() error {
	if err := ValidateSlug(f.Slug); err != nil {
		return err
	}
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("form %q: title must not be empty", f.Slug)
	}
	seen := make(map[string]bool, len(f.Fields))
	for _, field := range f.Fields {
		if field.Name == "" {
			return fmt.Errorf("form %q: field name must not be empty", f.Slug)
		}
		if seen[field.Name] {
			return fmt.Errorf("form %q: duplicate field %q", f.Slug, field.Name)
		}
		seen[field.Name] = true
		switch field.Type {
		case FieldText, FieldEmail, FieldTel, FieldTextarea, FieldCheckbox:
		default:
			return fmt.Errorf("form %q field %q: unknown type %q", f.Slug, field.Name, field.Type)
		}
	}
	return nil
}

// MissingFields returns the labels of required fields absent from data, in
// form order.
func (f *Form) MissingFields(data map[string]string) []string {
	var missing []string
	for _, field := range f.Fields {
		if field.Required && strings.TrimSpace(data[field.Name]) == "" {
			label := field.Label
			if label == "" {
				label = field.Name
			}
			missing = append(missing, label)
		}
	}
	return missing
}

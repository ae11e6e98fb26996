// ABOUTME: Site settings (brand, navigation, floating action buttons, legal footer) read from YAML.
// ABOUTME: The legal footer is a rich-text document written inline as a YAML map or JSON string.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NavLink is one entry in the header navigation.
type NavLink struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
}

// ActionStyle is the visual treatment of a floating action button.
type ActionStyle string

const (
	ActionPrimary   ActionStyle = "primary"
	ActionSecondary ActionStyle = "secondary"
)

// FloatingAction is a call-to-action button pinned to the page corner.
type FloatingAction struct {
	Label string      `yaml:"label" json:"label"`
	Href  string      `yaml:"href" json:"href"`
	Style ActionStyle `yaml:"style" json:"style"`
}

// Site holds global settings shared by every page.
type Site struct {
	Brand           string           `yaml:"brand"`
	Tagline         string           `yaml:"tagline"`
	Nav             []NavLink        `yaml:"nav"`
	FloatingActions []FloatingAction `yaml:"floatingActions"`
	Legal           json.RawMessage  `yaml:"-"`
}

type siteFile struct {
	Brand           string           `yaml:"brand"`
	Tagline         string           `yaml:"tagline"`
	Nav             []NavLink        `yaml:"nav"`
	FloatingActions []FloatingAction `yaml:"floatingActions"`
	Legal           any              `yaml:"legal"`
}

// DefaultSite is used when no site file is configured.
func DefaultSite() *Site {
	return &Site{
		Brand: "Pulse",
		Nav:   []NavLink{{Label: "Home", Href: "/"}},
	}
}

// LoadSite reads site settings from path. An empty path or missing file yields
// DefaultSite.
func LoadSite(path string) (*Site, error) {
	if path == "" {
		return DefaultSite(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSite(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read site file: %w", err)
	}
	site, err := ParseSite(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return site, nil
}

// ParseSite decodes site settings YAML. Empty fields fall back to DefaultSite.
func ParseSite(data []byte) (*Site, error) {
	var raw siteFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode site yaml: %w", err)
	}

	site := DefaultSite()
	if raw.Brand != "" {
		site.Brand = raw.Brand
	}
	site.Tagline = raw.Tagline
	if len(raw.Nav) > 0 {
		site.Nav = raw.Nav
	}
	for i, fa := range raw.FloatingActions {
		if fa.Label == "" || fa.Href == "" {
			return nil, fmt.Errorf("floating action %d: label and href are required", i)
		}
		switch fa.Style {
		case "":
			fa.Style = ActionPrimary
		case ActionPrimary, ActionSecondary:
		default:
			return nil, fmt.Errorf("floating action %q: unknown style %q", fa.Label, fa.Style)
		}
		site.FloatingActions = append(site.FloatingActions, fa)
	}

	switch v := raw.Legal.(type) {
	case nil:
	case string:
		if !json.Valid([]byte(v)) {
			return nil, errors.New("legal: rich text string is not valid JSON")
		}
		site.Legal = json.RawMessage(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("legal: %w", err)
		}
		site.Legal = b
	}
	return site, nil
}

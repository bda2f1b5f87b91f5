package domain

import (
	"errors"
	"net/url"
	"strings"
)

// FieldDef maps a project-defined form field name to its backend identifier.
type FieldDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectInfo is the read-only configuration supplied by the project
// backend: templates, form field definitions and feature flags.
type ProjectInfo struct {
	ID       string     `json:"id"`
	WebLink  string     `json:"web_link"`
	Features []string   `json:"features"`
	Artworks []Artwork  `json:"artworks"`
	Fields   []FieldDef `json:"fields"`
}

// HasFeature reports whether the project enables the named feature flag.
func (p ProjectInfo) HasFeature(name string) bool {
	for _, f := range p.Features {
		if f == name {
			return true
		}
	}
	return false
}

// DefaultArtwork returns the project's primary template.
func (p ProjectInfo) DefaultArtwork() (Artwork, error) {
	if len(p.Artworks) == 0 || p.Artworks[0].Name == "" {
		return Artwork{}, errors.New("project: template information is missing")
	}
	return p.Artworks[0], nil
}

// Employee is the logged-in sales rep session record.
type Employee struct {
	Hash string `json:"hash"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// DomainAndSlug extracts the company subdomain and the project slug from
// the project's web link. The subdomain is the first host label when the
// host carries more than two labels; the slug is the last non-empty path
// segment. Both are required.
func (p ProjectInfo) DomainAndSlug() (subDomain, slug string, err error) {
	u, err := url.Parse(strings.TrimSpace(p.WebLink))
	if err != nil {
		return "", "", errors.New("project: invalid web link")
	}
	hostParts := strings.Split(u.Hostname(), ".")
	if len(hostParts) > 2 {
		subDomain = hostParts[0]
	}
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			slug = part
		}
	}
	if subDomain == "" || slug == "" {
		return "", "", errors.New("project: web link is missing subdomain or slug")
	}
	return subDomain, slug, nil
}

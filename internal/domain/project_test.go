package domain

import "testing"

func TestDomainAndSlug(t *testing.T) {
	p := ProjectInfo{WebLink: "https://acme.pixpro.app/company/acme/greetings-2026"}
	sub, slug, err := p.DomainAndSlug()
	if err != nil {
		t.Fatalf("DomainAndSlug: %v", err)
	}
	if sub != "acme" {
		t.Fatalf("subdomain = %q, want acme", sub)
	}
	if slug != "greetings-2026" {
		t.Fatalf("slug = %q, want greetings-2026", slug)
	}
}

func TestDomainAndSlugRejectsBareDomain(t *testing.T) {
	p := ProjectInfo{WebLink: "https://example.com/project"}
	if _, _, err := p.DomainAndSlug(); err == nil {
		t.Fatalf("expected error for host without subdomain")
	}
}

func TestDomainAndSlugRejectsEmptyPath(t *testing.T) {
	p := ProjectInfo{WebLink: "https://acme.example.com/"}
	if _, _, err := p.DomainAndSlug(); err == nil {
		t.Fatalf("expected error for link without slug")
	}
}

func TestTextStyleWithDefaults(t *testing.T) {
	s := TextStyle{FontSize: 40}.WithDefaults()
	if s.X != DefaultTextX || s.Y != DefaultTextY {
		t.Fatalf("position defaults = (%v,%v)", s.X, s.Y)
	}
	if s.MaxWidth != DefaultTextMaxWidth {
		t.Fatalf("max width default = %v", s.MaxWidth)
	}
	if s.LineHeight != 48 {
		t.Fatalf("line height = %v, want 1.2x font size", s.LineHeight)
	}
	if s.Align != AlignLeft {
		t.Fatalf("align default = %q", s.Align)
	}
}

func TestTextStyleWithDefaultsKeepsExplicitValues(t *testing.T) {
	in := TextStyle{X: 670, Y: 240, FontSize: 215, Color: "#e8bf62", Align: AlignCenter, MaxWidth: 500, LineHeight: 44}
	out := in.WithDefaults()
	if out != in {
		t.Fatalf("explicit settings changed: %+v", out)
	}
}

func TestContactDetailsField(t *testing.T) {
	c := ContactDetails{
		Name:   "Dr. Jane Roe",
		Email:  "jane@example.com",
		Values: map[string]string{"degree": "MBBS"},
	}
	if got := c.Field("name"); got != "Dr. Jane Roe" {
		t.Fatalf("name = %q", got)
	}
	if got := c.Field("degree"); got != "MBBS" {
		t.Fatalf("degree = %q", got)
	}
	if got := c.Field("missing"); got != "" {
		t.Fatalf("missing = %q, want empty", got)
	}
}

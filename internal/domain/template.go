package domain

// Align selects horizontal text alignment relative to the anchor x.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Layout defaults applied when a template omits a setting.
const (
	DefaultTextX        = 50
	DefaultTextY        = 50
	DefaultTextMaxWidth = 500
	defaultLineSpacing  = 1.2
)

// PhotoBox is the rectangle the subject photo is scaled into, in template
// pixel coordinates.
type PhotoBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TextStyle positions and styles one text field on the template.
type TextStyle struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   float64 `json:"font_size"`
	Color      string  `json:"color"`
	Align      Align   `json:"align"`
	MaxWidth   float64 `json:"max_width"`
	LineHeight float64 `json:"line_height"`
	// TopAnchored draws multi-line blocks downward from Y instead of
	// centering them vertically around it.
	TopAnchored bool `json:"top_anchored,omitempty"`
}

// WithDefaults fills unset fields with the documented layout defaults.
func (s TextStyle) WithDefaults() TextStyle {
	if s.X == 0 {
		s.X = DefaultTextX
	}
	if s.Y == 0 {
		s.Y = DefaultTextY
	}
	if s.FontSize <= 0 {
		s.FontSize = 16
	}
	if s.Color == "" {
		s.Color = "#000000"
	}
	if s.Align == "" {
		s.Align = AlignLeft
	}
	if s.MaxWidth <= 0 {
		s.MaxWidth = DefaultTextMaxWidth
	}
	if s.LineHeight <= 0 {
		s.LineHeight = s.FontSize * defaultLineSpacing
	}
	return s
}

// TemplateSettings is the per-artwork layout configuration supplied by the
// project backend and consumed verbatim by the composer.
type TemplateSettings struct {
	Photo PhotoBox  `json:"photo"`
	Name  TextStyle `json:"name"`
}

// Artwork is one visual template of a project: a background image, an
// optional secondary asset (brochure PDF or alternate background), and the
// layout settings.
type Artwork struct {
	Name      string           `json:"name"`
	Thumbnail string           `json:"thumbnail"`
	Video     string           `json:"video,omitempty"`
	Settings  TemplateSettings `json:"settings"`
}

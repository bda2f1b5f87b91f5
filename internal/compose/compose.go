// Package compose renders personalized e-card and NFC card artifacts by
// overlaying a subject photo and text fields onto a template image.
package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"evideo/internal/domain"
	"evideo/internal/infra"
)

// OutputKind selects the artifact encoding.
type OutputKind string

const (
	OutputRaster OutputKind = "raster"
	OutputPDF    OutputKind = "pdf"
)

// TextField is one positioned, styled run of text.
type TextField struct {
	Text  string
	Style domain.TextStyle
}

// Input describes one composition: the template image, the subject photo
// and its placement, the text fields, and for PDF output the insert
// document merged after the card page.
type Input struct {
	TemplateURL string
	PhotoURL    string
	Photo       domain.PhotoBox
	Fields      []TextField
	Output      OutputKind
	// InsertURL is the pre-existing brochure document appended to the card
	// page. Required for OutputPDF; merge failure is fatal for the whole
	// artifact.
	InsertURL string
}

// Artifact is the finished in-memory artifact. It is never persisted
// locally; callers hand it to the upload client and discard it.
type Artifact struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Options configures a Composer.
type Options struct {
	// FontPath points at a TTF/OTF file. When empty a built-in bitmap face
	// is used, which keeps composition working in local and CI
	// environments without font assets.
	FontPath   string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Composer fetches source images and renders artifacts.
type Composer struct {
	httpClient *http.Client
	logger     *infra.Logger

	mu    sync.Mutex
	otf   *opentype.Font
	faces map[float64]font.Face
}

// NewComposer constructs a composer with sane defaults and injected
// dependencies.
func NewComposer(opts Options) (*Composer, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	c := &Composer{
		httpClient: httpClient,
		logger:     logger,
		faces:      make(map[float64]font.Face),
	}
	if opts.FontPath != "" {
		raw, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("compose: read font: %w", err)
		}
		otf, err := opentype.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("compose: parse font: %w", err)
		}
		c.otf = otf
	}
	return c, nil
}

// Compose renders one artifact. The draw order is photo first, template
// second: the template carries transparency where the photo shows through.
func (c *Composer) Compose(ctx context.Context, in Input) (*Artifact, error) {
	if in.Output != OutputRaster && in.Output != OutputPDF {
		return nil, fmt.Errorf("%w: unknown output kind %q", domain.ErrCompose, in.Output)
	}

	template, err := c.fetchImage(ctx, in.TemplateURL)
	if err != nil {
		return nil, fmt.Errorf("%w: template: %s", domain.ErrCompose, err)
	}
	bounds := template.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dc := gg.NewContext(width, height)

	// Cards without a subject photo (the NFC layout draws a name initial
	// instead) compose from the template alone.
	if strings.TrimSpace(in.PhotoURL) != "" {
		photo, err := c.fetchImage(ctx, in.PhotoURL)
		if err != nil {
			return nil, fmt.Errorf("%w: photo: %s", domain.ErrCompose, err)
		}
		dc.DrawImage(scaleInto(photo, in.Photo), in.Photo.X, in.Photo.Y)
	}
	dc.DrawImage(template, 0, 0)

	for _, f := range in.Fields {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		c.drawField(dc, f)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("%w: encode raster: %s", domain.ErrCompose, err)
	}

	if in.Output == OutputRaster {
		return &Artifact{Data: buf.Bytes(), MIME: "image/png", Width: width, Height: height}, nil
	}

	insert, err := c.fetchBytes(ctx, in.InsertURL)
	if err != nil {
		return nil, fmt.Errorf("%w: insert document: %s", domain.ErrCompose, err)
	}
	doc, err := mergedDocument(buf.Bytes(), width, height, insert)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCompose, err)
	}
	return &Artifact{Data: doc, MIME: "application/pdf", Width: width, Height: height}, nil
}

// drawField wraps the text greedily against the field's max width and draws
// the block centered vertically around the nominal y unless top-anchored.
func (c *Composer) drawField(dc *gg.Context, f TextField) {
	style := f.Style.WithDefaults()
	dc.SetFontFace(c.face(style.FontSize))
	dc.SetHexColor(style.Color)

	measure := func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}
	lines := wrapLines(measure, f.Text, style.MaxWidth)
	y := firstBaseline(style.Y, len(lines), style.LineHeight, style.TopAnchored)

	ax := 0.0
	switch style.Align {
	case domain.AlignCenter:
		ax = 0.5
	case domain.AlignRight:
		ax = 1.0
	}
	for i, line := range lines {
		dc.DrawStringAnchored(line, style.X, y+float64(i)*style.LineHeight, ax, 0)
	}
}

func (c *Composer) face(size float64) font.Face {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.otf == nil {
		return basicfont.Face7x13
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(c.otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	c.faces[size] = f
	return f
}

func (c *Composer) fetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	raw, err := c.fetchBytes(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", imageURL, err)
	}
	return img, nil
}

func (c *Composer) fetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, errors.New("source url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// scaleInto resizes src to the photo rectangle's dimensions.
func scaleInto(src image.Image, box domain.PhotoBox) image.Image {
	if box.Width <= 0 || box.Height <= 0 {
		return src
	}
	b := src.Bounds()
	if b.Dx() == box.Width && b.Dy() == box.Height {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, box.Width, box.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// wrapLines performs greedy word wrap: words accumulate into a line until
// adding the next one would exceed maxWidth as measured; only a single
// over-long word may exceed the limit.
func wrapLines(measure func(string) float64, text string, maxWidth float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		test := current + word + " "
		if measure(test) > maxWidth && current != "" {
			lines = append(lines, strings.TrimSpace(current))
			current = word + " "
		} else {
			current = test
		}
	}
	if strings.TrimSpace(current) != "" {
		lines = append(lines, strings.TrimSpace(current))
	}
	return lines
}

// firstBaseline centers a block of n lines vertically around y, unless the
// field is top-anchored, in which case lines run downward from y.
func firstBaseline(y float64, n int, lineHeight float64, topAnchored bool) float64 {
	if topAnchored || n <= 1 {
		return y
	}
	return y - float64(n-1)*lineHeight/2
}

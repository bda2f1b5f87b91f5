package compose

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"evideo/internal/domain"
)

// charMeasure emulates a fixed-advance font: 10 units per rune, spaces
// included, matching how canvas text measurement behaves for the wrap.
func charMeasure(s string) float64 { return float64(len(s)) * 10 }

func TestWrapLinesGreedy(t *testing.T) {
	// "word1 word2 " measures 120 > 110, "word1 " alone fits.
	lines := wrapLines(charMeasure, "word1 word2", 110)
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want wrap after word1", lines)
	}
	if lines[0] != "word1" || lines[1] != "word2" {
		t.Fatalf("lines = %v", lines)
	}
	for _, l := range lines {
		if charMeasure(l) > 110 {
			t.Fatalf("line %q exceeds max width", l)
		}
	}
}

func TestWrapLinesTwoWordsPerLine(t *testing.T) {
	lines := wrapLines(charMeasure, "Jonathan Alexander Whitfield", 200)
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want 2", lines)
	}
	if lines[0] != "Jonathan Alexander" || lines[1] != "Whitfield" {
		t.Fatalf("lines = %v", lines)
	}
	for _, l := range lines {
		if charMeasure(l) > 200 {
			t.Fatalf("line %q exceeds max width", l)
		}
	}
}

func TestWrapLinesSingleOverlongWord(t *testing.T) {
	lines := wrapLines(charMeasure, "Augustinopolis", 50)
	if len(lines) != 1 || lines[0] != "Augustinopolis" {
		t.Fatalf("lines = %v, want the over-long word kept whole", lines)
	}
}

func TestWrapLinesEmptyText(t *testing.T) {
	if lines := wrapLines(charMeasure, "   ", 100); lines != nil {
		t.Fatalf("lines = %v, want none", lines)
	}
}

func TestFirstBaselineCentersBlock(t *testing.T) {
	// Two lines at lineHeight 44 centered around y=330.
	if got := firstBaseline(330, 2, 44, false); got != 308 {
		t.Fatalf("baseline = %v, want 308", got)
	}
	if got := firstBaseline(330, 1, 44, false); got != 330 {
		t.Fatalf("single line baseline = %v, want y unchanged", got)
	}
	if got := firstBaseline(330, 3, 44, true); got != 330 {
		t.Fatalf("top-anchored baseline = %v, want y unchanged", got)
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// imageServer serves fixed PNG bodies by path.
func imageServer(t *testing.T, images map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := images[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComposeDrawsPhotoUnderTemplate(t *testing.T) {
	// Template: 4x4, transparent in the top-left 2x2, opaque red elsewhere.
	template := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{R: 255, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 && y < 2 {
				continue
			}
			template.SetRGBA(x, y, red)
		}
	}
	// Photo: solid blue, scaled over the full canvas.
	photo := image.NewRGBA(image.Rect(0, 0, 2, 2))
	blue := color.RGBA{B: 255, A: 255}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			photo.SetRGBA(x, y, blue)
		}
	}

	srv := imageServer(t, map[string][]byte{
		"/template.png": encodePNG(t, template),
		"/photo.png":    encodePNG(t, photo),
	})

	c, err := NewComposer(Options{HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := c.Compose(context.Background(), Input{
		TemplateURL: srv.URL + "/template.png",
		PhotoURL:    srv.URL + "/photo.png",
		Photo:       domain.PhotoBox{X: 0, Y: 0, Width: 4, Height: 4},
		Output:      OutputRaster,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if artifact.MIME != "image/png" {
		t.Fatalf("mime = %q", artifact.MIME)
	}
	if artifact.Width != 4 || artifact.Height != 4 {
		t.Fatalf("dimensions = %dx%d, want template size", artifact.Width, artifact.Height)
	}

	out, err := png.Decode(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	// The photo shows through the template's transparent region; the
	// opaque template covers it elsewhere. Draw order is load-bearing.
	if r, g, b, _ := out.At(0, 0).RGBA(); r != 0 || g != 0 || b>>8 != 255 {
		t.Fatalf("pixel (0,0) = %v, want photo blue", out.At(0, 0))
	}
	if r, _, b, _ := out.At(3, 3).RGBA(); r>>8 != 255 || b != 0 {
		t.Fatalf("pixel (3,3) = %v, want template red", out.At(3, 3))
	}
}

func TestComposeWithoutPhoto(t *testing.T) {
	template := image.NewRGBA(image.Rect(0, 0, 2, 2))
	template.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	srv := imageServer(t, map[string][]byte{
		"/template.png": encodePNG(t, template),
	})
	c, err := NewComposer(Options{HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := c.Compose(context.Background(), Input{
		TemplateURL: srv.URL + "/template.png",
		Output:      OutputRaster,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if artifact.Width != 2 || artifact.Height != 2 {
		t.Fatalf("dimensions = %dx%d", artifact.Width, artifact.Height)
	}
}

func TestComposeFailsOnUndecodableTemplate(t *testing.T) {
	srv := imageServer(t, map[string][]byte{
		"/template.png": []byte("not a png"),
		"/photo.png":    encodePNG(t, image.NewRGBA(image.Rect(0, 0, 1, 1))),
	})
	c, err := NewComposer(Options{HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Compose(context.Background(), Input{
		TemplateURL: srv.URL + "/template.png",
		PhotoURL:    srv.URL + "/photo.png",
		Output:      OutputRaster,
	})
	if !errors.Is(err, domain.ErrCompose) {
		t.Fatalf("err = %v, want ErrCompose", err)
	}
}

func TestComposePDFFailsOnMissingInsert(t *testing.T) {
	img := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	srv := imageServer(t, map[string][]byte{
		"/template.png": img,
		"/photo.png":    img,
	})
	c, err := NewComposer(Options{HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Compose(context.Background(), Input{
		TemplateURL: srv.URL + "/template.png",
		PhotoURL:    srv.URL + "/photo.png",
		Output:      OutputPDF,
		InsertURL:   srv.URL + "/missing.pdf",
	})
	if !errors.Is(err, domain.ErrCompose) {
		t.Fatalf("err = %v, want ErrCompose when the insert is unreachable", err)
	}
}

func TestComposeRendersTextField(t *testing.T) {
	// White template, no transparency; the text must land on the canvas.
	template := image.NewRGBA(image.Rect(0, 0, 120, 60))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			template.SetRGBA(x, y, white)
		}
	}
	photo := image.NewRGBA(image.Rect(0, 0, 1, 1))
	photo.SetRGBA(0, 0, white)

	srv := imageServer(t, map[string][]byte{
		"/template.png": encodePNG(t, template),
		"/photo.png":    encodePNG(t, photo),
	})
	c, err := NewComposer(Options{HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := c.Compose(context.Background(), Input{
		TemplateURL: srv.URL + "/template.png",
		PhotoURL:    srv.URL + "/photo.png",
		Photo:       domain.PhotoBox{Width: 1, Height: 1},
		Fields: []TextField{{
			Text:  "Dr. Roe",
			Style: domain.TextStyle{X: 60, Y: 30, FontSize: 13, Color: "#000000", Align: domain.AlignCenter, MaxWidth: 110, LineHeight: 15},
		}},
		Output: OutputRaster,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	out, err := png.Decode(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatal(err)
	}
	dark := 0
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, g, bl, _ := out.At(x, y).RGBA(); r>>8 < 128 && g>>8 < 128 && bl>>8 < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("no dark pixels: text was not drawn")
	}
}

func TestNFCFieldsLayout(t *testing.T) {
	contact := domain.ContactDetails{
		Name:       "Dr. Jane Roe",
		Speciality: "Cardiology",
		Email:      "jane@example.com",
	}
	fields := NFCFields(contact)
	if len(fields) != 8 {
		t.Fatalf("fields = %d, want 8", len(fields))
	}
	if fields[0].Text != "J" {
		t.Fatalf("initial = %q, want honorific skipped", fields[0].Text)
	}
	if fields[1].Style.Align != domain.AlignCenter || fields[1].Text != "Dr. Jane Roe" {
		t.Fatalf("name field = %+v", fields[1])
	}
	if fields[3].Text != "Cardiology" || fields[3].Style.Align != domain.AlignRight {
		t.Fatalf("speciality field = %+v", fields[3])
	}
}

func TestNFCBackgroundSelection(t *testing.T) {
	artwork := domain.Artwork{Thumbnail: "https://cdn/x/thumb.png", Video: "https://cdn/x/alt.png"}
	withEmail := domain.ContactDetails{Email: "a@b.c"}
	if got := NFCBackground(artwork, withEmail); got != artwork.Video {
		t.Fatalf("background = %q, want alternate asset", got)
	}
	if got := NFCBackground(artwork, domain.ContactDetails{}); got != artwork.Thumbnail {
		t.Fatalf("background = %q, want thumbnail", got)
	}
}

func TestNameInitial(t *testing.T) {
	cases := map[string]string{
		"Dr. Jane Roe": "J",
		"jane roe":     "j",
		"Dr.":          "",
		"":             "",
	}
	for in, want := range cases {
		if got := nameInitial(in); got != want {
			t.Fatalf("nameInitial(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestECardFieldsAppliesDefaults(t *testing.T) {
	settings := domain.TemplateSettings{Name: domain.TextStyle{FontSize: 40}}
	fields := ECardFields(settings, domain.ContactDetails{Name: "Dr. Roe"})
	if len(fields) != 1 {
		t.Fatalf("fields = %d", len(fields))
	}
	s := fields[0].Style
	if s.MaxWidth != domain.DefaultTextMaxWidth || s.X != domain.DefaultTextX {
		t.Fatalf("defaults not applied: %+v", s)
	}
	if !strings.Contains(fields[0].Text, "Roe") {
		t.Fatalf("text = %q", fields[0].Text)
	}
}

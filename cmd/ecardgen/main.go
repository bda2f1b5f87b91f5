// ecardgen composes a single e-card or NFC card from the command line and
// writes it to disk. It is a development aid for checking template
// settings without running the full service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"evideo/internal/compose"
	"evideo/internal/domain"
)

func main() {
	var (
		kindFlag     string
		templateFlag string
		photoFlag    string
		insertFlag   string
		nameFlag     string
		emailFlag    string
		fontFlag     string
		outFlag      string
		photoBoxFlag string
	)

	flag.StringVar(&kindFlag, "kind", "image", "artifact kind (image, pdf, nfc)")
	flag.StringVar(&templateFlag, "template", "", "template image URL")
	flag.StringVar(&photoFlag, "photo", "", "doctor photo URL")
	flag.StringVar(&insertFlag, "insert", "", "PDF insert URL (pdf kind only)")
	flag.StringVar(&nameFlag, "name", "", "doctor name to render")
	flag.StringVar(&emailFlag, "email", "", "doctor email (nfc kind only)")
	flag.StringVar(&fontFlag, "font", "", "path to a TTF/OTF font file")
	flag.StringVar(&outFlag, "out", "", "output file path")
	flag.StringVar(&photoBoxFlag, "photo-box", "", "photo placement as x,y,w,h")
	flag.Parse()

	if templateFlag == "" {
		exitWithError(errors.New("-template is required"))
	}
	if outFlag == "" {
		exitWithError(errors.New("-out is required"))
	}

	contact := domain.ContactDetails{
		Name:  strings.TrimSpace(nameFlag),
		Email: strings.TrimSpace(emailFlag),
		Photo: photoFlag,
	}
	artwork := domain.Artwork{
		Name:      "cli",
		Thumbnail: templateFlag,
		Video:     insertFlag,
	}
	if photoBoxFlag != "" {
		box, err := parsePhotoBox(photoBoxFlag)
		if err != nil {
			exitWithError(err)
		}
		artwork.Settings.Photo = box
	}

	in := compose.Input{
		TemplateURL: templateFlag,
		PhotoURL:    photoFlag,
		Photo:       artwork.Settings.Photo,
		Output:      compose.OutputRaster,
	}
	switch strings.ToLower(kindFlag) {
	case "image":
		in.Fields = compose.ECardFields(artwork.Settings, contact)
	case "pdf":
		if insertFlag == "" {
			exitWithError(errors.New("-insert is required for pdf output"))
		}
		in.Fields = compose.ECardFields(artwork.Settings, contact)
		in.Output = compose.OutputPDF
		in.InsertURL = insertFlag
	case "nfc":
		in.TemplateURL = compose.NFCBackground(artwork, contact)
		in.Fields = compose.NFCFields(contact)
	default:
		exitWithError(fmt.Errorf("unsupported kind %q", kindFlag))
	}

	composer, err := compose.NewComposer(compose.Options{FontPath: fontFlag})
	if err != nil {
		exitWithError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	artifact, err := composer.Compose(ctx, in)
	if err != nil {
		exitWithError(err)
	}
	if err := os.WriteFile(outFlag, artifact.Data, 0o644); err != nil {
		exitWithError(err)
	}
	fmt.Printf("wrote %s (%d bytes, %s)\n", outFlag, len(artifact.Data), artifact.MIME)
}

func parsePhotoBox(s string) (domain.PhotoBox, error) {
	var box domain.PhotoBox
	n, err := fmt.Sscanf(s, "%d,%d,%d,%d", &box.X, &box.Y, &box.Width, &box.Height)
	if err != nil || n != 4 {
		return domain.PhotoBox{}, fmt.Errorf("invalid -photo-box %q, want x,y,w,h", s)
	}
	return box, nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

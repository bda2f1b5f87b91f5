package compose

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Raster units per physical inch, used consistently for page sizing.
const rasterUnitsPerInch = 96.0

// PDF points per inch.
const pointsPerInch = 72.0

// mergedDocument encodes the composed raster as a single PDF page sized to
// its physical dimensions and appends the insert document. The merge is
// all-or-nothing: a corrupt insert fails the whole artifact rather than
// degrading to a single-page output.
func mergedDocument(raster []byte, widthPx, heightPx int, insert []byte) ([]byte, error) {
	widthPt := float64(widthPx) / rasterUnitsPerInch * pointsPerInch
	heightPt := float64(heightPx) / rasterUnitsPerInch * pointsPerInch

	imp, err := api.Import(fmt.Sprintf("dimensions:%.2f %.2f, position:full", widthPt, heightPt), types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("page layout: %w", err)
	}

	var page bytes.Buffer
	if err := api.ImportImages(nil, &page, []io.Reader{bytes.NewReader(raster)}, imp, nil); err != nil {
		return nil, fmt.Errorf("encode card page: %w", err)
	}

	var merged bytes.Buffer
	readers := []io.ReadSeeker{bytes.NewReader(page.Bytes()), bytes.NewReader(insert)}
	if err := api.MergeRaw(readers, &merged, false, nil); err != nil {
		return nil, fmt.Errorf("merge insert document: %w", err)
	}
	return merged.Bytes(), nil
}

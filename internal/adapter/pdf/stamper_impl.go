// Package pdf implements the overlay stamping of captured schedule
// documents. The overlay layer is rendered with fpdf and merged onto the
// first page with pdfcpu; every other page passes through untouched.
package pdf

import (
	"bytes"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/user/schedule-capture-service/internal/entity"
	"github.com/user/schedule-capture-service/internal/repository"
)

// Layout constants for the overlay, in PDF points.
const (
	textMargin      = 30
	signatureWidth  = 80
	signatureHeight = 40
)

type Stamper struct {
	// buildOverlay renders a page-sized overlay layer. Swappable in tests
	// to exercise the fallback path.
	buildOverlay func(width, height float64, overlay entity.Overlay) ([]byte, error)
}

// NewStamper creates the production stamper.
func NewStamper() repository.StamperRepository {
	return &Stamper{buildOverlay: buildOverlayLayer}
}

// Stamp composes the overlay onto page 1 of doc and returns the resulting
// document. The input must be a readable PDF with at least one page, and
// the overlay message must be non-empty; anything else is a
// *repository.ProcessingError. A failure while rendering or merging the
// overlay itself only logs a warning and returns the document unmodified.
func (s *Stamper) Stamp(doc []byte, overlay entity.Overlay) ([]byte, error) {
	if strings.TrimSpace(overlay.Message) == "" {
		return nil, &repository.ProcessingError{Op: "validation", Err: repository.ErrEmptyMessage}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(doc), conf)
	if err != nil {
		return nil, &repository.ProcessingError{Op: "read", Err: err}
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, &repository.ProcessingError{Op: "read", Err: err}
	}
	if ctx.PageCount == 0 {
		return nil, &repository.ProcessingError{Op: "validation", Err: repository.ErrNoPages}
	}

	dims, err := ctx.PageDims()
	if err != nil || len(dims) == 0 {
		slog.Warn("Could not read page dimensions, emitting document unmodified", "error", err)
		return doc, nil
	}
	dim := dims[0]
	slog.Info("Page 1 dimensions", "width", dim.Width, "height", dim.Height)

	layer, err := s.buildOverlay(dim.Width, dim.Height, overlay)
	if err != nil {
		slog.Warn("Could not render overlay, emitting document unmodified", "error", err)
		return doc, nil
	}

	// pdfcpu consumes PDF watermarks from a file.
	tmp, err := os.CreateTemp("", "schedule-overlay-*.pdf")
	if err != nil {
		slog.Warn("Could not stage overlay file, emitting document unmodified", "error", err)
		return doc, nil
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(layer); err != nil {
		tmp.Close()
		slog.Warn("Could not stage overlay file, emitting document unmodified", "error", err)
		return doc, nil
	}
	if err := tmp.Close(); err != nil {
		slog.Warn("Could not stage overlay file, emitting document unmodified", "error", err)
		return doc, nil
	}

	// The layer has the exact page dimensions; stamp it 1:1 over page 1.
	// "scalefactor" must be spelled out, the "sc" prefix is ambiguous with
	// "strokecolor".
	wm, err := api.PDFWatermark(tmp.Name(), "scalefactor:1 abs, pos:c, rot:0", true, false, types.POINTS)
	if err != nil {
		slog.Warn("Could not prepare overlay stamp, emitting document unmodified", "error", err)
		return doc, nil
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(doc), &out, []string{"1"}, wm, conf); err != nil {
		slog.Warn("Could not merge overlay on page 1, emitting document unmodified", "error", err)
		return doc, nil
	}

	slog.Info("Overlay applied to page 1", "pages", ctx.PageCount)
	return out.Bytes(), nil
}

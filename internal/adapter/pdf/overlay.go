package pdf

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/user/schedule-capture-service/internal/entity"
)

// buildOverlayLayer renders a single page of the given dimensions carrying
// the attestation message and, when available, the signature image. The
// portal's native print may vary the page size, so the layer is built to
// measure instead of assuming A4.
func buildOverlayLayer(width, height float64, overlay entity.Overlay) ([]byte, error) {
	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: width, Ht: height},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	// Core fonts are cp1252; the message may carry accented characters.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 12)
	doc.SetTextColor(0, 0, 255)
	// fpdf's origin is the top-left corner; the message baseline sits
	// textMargin points above the bottom edge.
	doc.Text(textMargin, height-textMargin, tr(overlay.Message))

	if overlay.SignaturePath != "" {
		if _, err := os.Stat(overlay.SignaturePath); err == nil {
			doc.ImageOptions(overlay.SignaturePath,
				width-signatureWidth-textMargin,
				height-signatureHeight-textMargin,
				signatureWidth, signatureHeight,
				false, fpdf.ImageOptions{}, 0, "")
			slog.Info("Signature added", "path", overlay.SignaturePath)
		} else {
			slog.Warn("Signature file not found, continuing without it", "path", overlay.SignaturePath)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

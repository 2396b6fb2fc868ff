package render

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/matzehuels/circuitdraw/pkg/errors"
)

// pdfConverter is the external SVG to PDF converter (librsvg).
var pdfConverter = "rsvg-convert"

// ToPDF converts an SVG document to PDF with rsvg-convert. Without the
// converter on PATH it fails with UNSUPPORTED.
func ToPDF(svg []byte) ([]byte, error) {
	if !HasPDFSupport() {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"pdf output needs %s (brew install librsvg, apt install librsvg2-bin)", pdfConverter)
	}

	cmd := exec.Command(pdfConverter, "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "%s: %s", pdfConverter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

// HasPDFSupport reports whether the PDF converter is on PATH.
func HasPDFSupport() bool {
	_, err := exec.LookPath(pdfConverter)
	return err == nil
}

// Package renderer turns the intermediate HTML report into the final
// distributable artifact.
package renderer

import (
	"context"
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Renderer converts an HTML document into the artifact delivered to the
// user. Implementations may fail; callers fall back to delivering the HTML
// document itself.
type Renderer interface {
	Render(ctx context.Context, htmlPath string) (artifactPath string, err error)
}

// WkhtmltopdfRenderer shells out to wkhtmltopdf. The PDF lands next to the
// HTML document with a .pdf suffix.
type WkhtmltopdfRenderer struct{}

func NewWkhtmltopdfRenderer() WkhtmltopdfRenderer { return WkhtmltopdfRenderer{} }

func (WkhtmltopdfRenderer) Render(_ context.Context, htmlPath string) (string, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return "", fmt.Errorf("init pdf generator: %w", err)
	}
	pdfg.AddPage(wkhtmltopdf.NewPage(htmlPath))
	if err := pdfg.Create(); err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}

	pdfPath := strings.TrimSuffix(htmlPath, ".html") + ".pdf"
	if err := pdfg.WriteFile(pdfPath); err != nil {
		return "", fmt.Errorf("write pdf %s: %w", pdfPath, err)
	}
	return pdfPath, nil
}

// Package pdf wraps scanned images into single-page PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// DefaultLayout places the image centred on an A4 page, scaled to fit.
const DefaultLayout = "f:A4, pos:c, sc:1.0 rel"

type Renderer struct {
	layout string
}

func NewRenderer(layout string) *Renderer {
	if layout == "" {
		layout = DefaultLayout
	}
	return &Renderer{layout: layout}
}

func (r *Renderer) RenderSinglePage(ctx context.Context, imagePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer img.Close()

	imp, err := api.Import(r.layout, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse page layout %q: %w", r.layout, err)
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, []io.Reader{img}, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out.Bytes(), nil
}

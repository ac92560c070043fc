// Package render stamps item values onto a base image and encodes the
// result as png, jpeg or a single-page pdf.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	domaincolor "autoficate/domain/color"
	"autoficate/internal/errors"
	"autoficate/models"
	"autoficate/ports"
)

const jpegQuality = 90

// ImageRenderer implements Renderer over an on-disk font directory.
type ImageRenderer struct {
	fonts *FontCache
}

// NewImageRenderer creates a renderer reading fonts from fontsDir.
func NewImageRenderer(fontsDir string) (ports.Renderer, error) {
	cache, err := NewFontCache(fontsDir)
	if err != nil {
		return nil, errors.WithCode(errors.CodeRenderError, err)
	}
	return &ImageRenderer{fonts: cache}, nil
}

// RenderPage draws the row-th value of every heading onto a copy of the
// base image. Headings whose value list is shorter than row are skipped
// so ragged columns still render.
func (r *ImageRenderer) RenderPage(base image.Image, sets []*models.ItemSet, row int) (image.Image, error) {
	bounds := base.Bounds()
	canvas := image.NewNRGBA(bounds)
	draw.Draw(canvas, bounds, base, bounds.Min, draw.Src)

	for _, set := range sets {
		if row < 0 || row >= len(set.Items) {
			continue
		}
		value := set.Items[row]
		if value == "" {
			continue
		}

		textColor, err := domaincolor.ParseStored(set.Color)
		if err != nil {
			return nil, errors.Render(fmt.Sprintf("heading %q has an unusable color", set.Heading))
		}

		size := set.FontSize
		if size <= 0 {
			size = 12
		}
		face, err := opentype.NewFace(r.fonts.Lookup(set.FontName), &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, errors.WithCode(errors.CodeRenderError, err)
		}

		// position_y is the top edge of the text, so the baseline
		// sits one ascent below it.
		ascent := face.Metrics().Ascent.Ceil()
		drawer := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(textColor),
			Face: face,
			Dot:  fixed.P(set.PositionX, set.PositionY+ascent),
		}
		drawer.DrawString(value)
		face.Close()
	}

	return canvas, nil
}

// Encode writes page to w in the requested format: png, jpeg or pdf.
func (r *ImageRenderer) Encode(w io.Writer, page image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png", "":
		if err := png.Encode(w, page); err != nil {
			return errors.WithCode(errors.CodeRenderError, err)
		}
		return nil
	case "jpeg", "jpg":
		if err := jpeg.Encode(w, flatten(page), &jpeg.Options{Quality: jpegQuality}); err != nil {
			return errors.WithCode(errors.CodeRenderError, err)
		}
		return nil
	case "pdf":
		return encodePDF(w, page)
	default:
		return errors.Render(fmt.Sprintf("unsupported export format %q", format))
	}
}

// flatten composites the page over white. jpeg has no alpha channel and
// would otherwise render transparent regions black.
func flatten(page image.Image) image.Image {
	bounds := page.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, bounds, page, bounds.Min, draw.Over)
	return out
}

// encodePDF wraps the page in a single-page document sized to the image
// at one point per pixel.
func encodePDF(w io.Writer, page image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return errors.WithCode(errors.CodeRenderError, err)
	}

	width := float64(page.Bounds().Dx())
	height := float64(page.Bounds().Dy())

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: width, Ht: height},
	})
	doc.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("page", opts, &buf)
	doc.ImageOptions("page", 0, 0, width, height, false, opts, 0, "")

	if err := doc.Output(w); err != nil {
		return errors.WithCode(errors.CodeRenderError, err)
	}
	return nil
}

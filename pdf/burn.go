// Package pdf renders a document's overlay elements permanently onto
// its original PDF bytes. The engine is a pure bytes-to-bytes
// transform; persisting the output and auditing it are the caller's
// responsibility.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/AshwinGadhvi/BoloForm/apperr"
	"github.com/AshwinGadhvi/BoloForm/geom"
	"github.com/AshwinGadhvi/BoloForm/model"
)

const (
	textFontSize     = 12
	checkboxFontSize = 16

	// Fractions applied when an element arrives without explicit size.
	defaultHeightPercent      = 0.05
	defaultImageWidthPercent  = 0.3
	defaultImageHeightPercent = 0.15

	// ZapfDingbats code for the a20 checkmark glyph.
	checkmarkGlyph = "4"
)

// Burn stamps elements onto a copy of src and returns the new PDF
// bytes. src is never mutated. Elements referencing pages outside the
// document are stale client state and are skipped, as are unknown
// element types; only an unreadable source is fatal.
func Burn(ctx context.Context, src []byte, elements []model.Element) ([]byte, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	dims, err := api.PageDims(bytes.NewReader(src), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCorruptSource, err)
	}

	rasters, err := prepareRasters(ctx, elements, dims)
	if err != nil {
		return nil, err
	}

	stamps := make(map[int][]*pdfmodel.Watermark)
	for i, el := range elements {
		if el.Page < 1 || el.Page > len(dims) {
			continue
		}
		pageW, pageH := dims[el.Page-1].Width, dims[el.Page-1].Height
		x, y := anchor(el, pageW, pageH)

		var wm *pdfmodel.Watermark
		switch el.Type {
		case model.TypeText, model.TypeDate:
			if el.Value == "" {
				// An empty value draws nothing visible.
				continue
			}
			wm, err = api.TextWatermark(el.Value, textDesc(el.Color, textFontSize, x, y), true, false, types.POINTS)
		case model.TypeCheckbox:
			if !el.Checked {
				continue
			}
			wm, err = api.TextWatermark(checkmarkGlyph, checkboxDesc(checkboxFontSize, x, y), true, false, types.POINTS)
		case model.TypeSignature, model.TypeImage:
			if rasters[i] == nil {
				continue
			}
			wm, err = api.ImageWatermarkForReader(bytes.NewReader(rasters[i]), imageDesc(x, y), true, false, types.POINTS)
		default:
			// Forward compatibility: one unrecognized element never
			// fails the whole burn.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("burn: stamp element %d: %w", el.ID, err)
		}
		stamps[el.Page] = append(stamps[el.Page], wm)
	}

	var buf bytes.Buffer
	if len(stamps) == 0 {
		// Nothing to draw; still emit a standalone copy.
		if err := api.Optimize(bytes.NewReader(src), &buf, conf); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrCorruptSource, err)
		}
		return buf.Bytes(), nil
	}

	if err := api.AddWatermarksSliceMap(bytes.NewReader(src), &buf, stamps, conf); err != nil {
		return nil, fmt.Errorf("burn: apply stamps: %w", err)
	}
	return buf.Bytes(), nil
}

// anchor converts an element's percent geometry to a bottom-left-origin
// point on the page. PDF pages are bottom-up, while element geometry is
// stored top-left; the element height (default 0.05 when absent) drops
// the anchor below its top edge so text baselines land sensibly.
func anchor(el model.Element, pageW, pageH float64) (x, y float64) {
	hFrac := el.HeightPercent
	if hFrac == 0 {
		hFrac = defaultHeightPercent
	}
	page := geom.Rect{Width: pageW, Height: pageH}
	r := geom.ToPixels(geom.Percent{
		XPercent:      el.XPercent,
		YPercent:      el.YPercent,
		HeightPercent: hFrac,
	}, page)
	return r.X, pageH - r.Y - r.Height
}

// imageSize resolves the raster's target size in points, applying the
// image defaults when the element carries no explicit size.
func imageSize(el model.Element, pageW, pageH float64) (w, h float64) {
	wFrac := el.WidthPercent
	if wFrac == 0 {
		wFrac = defaultImageWidthPercent
	}
	hFrac := el.HeightPercent
	if hFrac == 0 {
		hFrac = defaultImageHeightPercent
	}
	return wFrac * pageW, hFrac * pageH
}

func textDesc(hexColor string, points int, x, y float64) string {
	r, g, b, ok := parseHexColor(hexColor)
	if !ok {
		r, g, b = 0, 0, 0
	}
	return fmt.Sprintf("fontname:Helvetica, points:%d, scalefactor:1 abs, position:bl, offset:%s %s, fillcolor:%.4f %.4f %.4f, rotation:0, opacity:1",
		points, fmtPt(x), fmtPt(y), r, g, b)
}

func checkboxDesc(points int, x, y float64) string {
	return fmt.Sprintf("fontname:ZapfDingbats, points:%d, scalefactor:1 abs, position:bl, offset:%s %s, fillcolor:0 0 0, rotation:0, opacity:1",
		points, fmtPt(x), fmtPt(y))
}

func imageDesc(x, y float64) string {
	return fmt.Sprintf("scalefactor:1 abs, position:bl, offset:%s %s, rotation:0, opacity:1", fmtPt(x), fmtPt(y))
}

func fmtPt(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// parseHexColor parses "#RRGGBB" into 0-1 channels. Anything else
// (including empty) reports false and the caller falls back to black.
func parseHexColor(s string) (r, g, b float64, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	channels := [3]float64{}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return 0, 0, 0, false
		}
		channels[i] = float64(v) / 255
	}
	return channels[0], channels[1], channels[2], true
}

func logSkippedImage(el model.Element, reason string) {
	slog.Warn("skipping image element", "element_id", el.ID, "page", el.Page, "reason", reason)
}

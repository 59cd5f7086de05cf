package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/AshwinGadhvi/BoloForm/model"
)

// rasterWorkers bounds concurrent raster decoding during one burn.
const rasterWorkers = 4

// prepareRasters decodes and scales every renderable signature/image
// element concurrently. The result slice is indexed like elements; a
// nil entry means the element is skipped (bad page, malformed data
// URL, undecodable payload). Decode failures are skips, not burn
// failures.
func prepareRasters(ctx context.Context, elements []model.Element, dims []types.Dim) ([][]byte, error) {
	rasters := make([][]byte, len(elements))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rasterWorkers)
	for i, el := range elements {
		if el.Type != model.TypeSignature && el.Type != model.TypeImage {
			continue
		}
		if el.Page < 1 || el.Page > len(dims) {
			continue
		}
		pageW, pageH := dims[el.Page-1].Width, dims[el.Page-1].Height
		i, el := i, el
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			w, h := imageSize(el, pageW, pageH)
			raster, reason := renderRaster(el.Image, w, h)
			if raster == nil {
				logSkippedImage(el, reason)
				return nil
			}
			rasters[i] = raster
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rasters, nil
}

// renderRaster decodes a data-URL raster and rescales it to w×h
// points (one pixel per point), re-encoded as PNG for embedding. A
// nil result carries a human-readable skip reason.
func renderRaster(dataURL string, w, h float64) ([]byte, string) {
	meta, payload, ok := splitDataURL(dataURL)
	if !ok {
		return nil, "not a data URL"
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "invalid base64 payload"
	}

	var src image.Image
	if isPNGHeader(meta) {
		src, err = png.Decode(bytes.NewReader(raw))
	} else {
		src, err = jpeg.Decode(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, "undecodable image payload"
	}

	dst := image.NewRGBA(image.Rect(0, 0, atLeastOne(w), atLeastOne(h)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "png encode failed"
	}
	return buf.Bytes(), ""
}

// splitDataURL splits "<meta>,<base64>" on the first comma. Elements
// whose image payload lacks the separator are skipped, not fatal.
func splitDataURL(s string) (meta, payload string, ok bool) {
	idx := strings.Index(s, ",")
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// isPNGHeader decides PNG vs JPEG decoding from the data-URL header.
// The declared media type wins; when the header carries none, fall
// back to the legacy substring sniff so rasters stored by older
// clients keep decoding the same way.
func isPNGHeader(meta string) bool {
	if mt, ok := mediaType(meta); ok {
		return mt == "image/png"
	}
	return strings.Contains(meta, "png")
}

// mediaType extracts the media type from a "data:<mime>[;params]"
// header.
func mediaType(meta string) (string, bool) {
	rest, found := strings.CutPrefix(meta, "data:")
	if !found {
		return "", false
	}
	if idx := strings.Index(rest, ";"); idx >= 0 {
		rest = rest[:idx]
	}
	rest = strings.TrimSpace(rest)
	if !strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func atLeastOne(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}

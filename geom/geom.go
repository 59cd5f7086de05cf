// Package geom provides the page-size-independent coordinate contract
// shared by the editor and the burn engine. All overlay geometry is
// stored as fractions of the page box so that placement survives
// page-size differences between display and burn environments.
package geom

// Rect is a rectangle in pixel space. A page rect carries the page
// origin in X/Y and its pixel dimensions in Width/Height.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Percent is a rectangle expressed as fractions of a page box, with a
// top-left origin.
type Percent struct {
	XPercent      float64
	YPercent      float64
	WidthPercent  float64
	HeightPercent float64
}

// ToPercent converts a pixel rectangle into page-relative fractions by
// dividing the deltas from the page origin by the page dimensions.
func ToPercent(r, page Rect) Percent {
	return Percent{
		XPercent:      (r.X - page.X) / page.Width,
		YPercent:      (r.Y - page.Y) / page.Height,
		WidthPercent:  r.Width / page.Width,
		HeightPercent: r.Height / page.Height,
	}
}

// ToPixels is the inverse of ToPercent for the same page rect.
func ToPixels(p Percent, page Rect) Rect {
	return Rect{
		X:      page.X + p.XPercent*page.Width,
		Y:      page.Y + p.YPercent*page.Height,
		Width:  p.WidthPercent * page.Width,
		Height: p.HeightPercent * page.Height,
	}
}

// Clamp saturates v into [min, max]. The editor uses it to keep
// interactively placed geometry inside the page; the burn engine does
// not rely on it and clips independently.
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

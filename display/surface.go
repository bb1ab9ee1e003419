// Package display renders the telemetry panel: a fixed-cadence loop that
// drains the shared slot and repaints only the regions whose values changed.
package display

import "image/color"

// Region is a pixel rectangle on a surface.
type Region struct {
	X, Y, W, H int
}

// Surface is the drawing target for the panel. DrawText positions the text
// baseline at (x, y); scale is an integer glyph magnification with 1 being
// the native 7x13 face.
type Surface interface {
	Bounds() Region
	FillRegion(r Region, c color.RGBA)
	DrawText(x, y int, s string, c color.RGBA, scale int)
	DrawLine(x0, y0, x1, y1 int, c color.RGBA)
	DrawRect(r Region, c color.RGBA)
	Flush() error
}

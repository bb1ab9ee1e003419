package display

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is an in-memory RGBA surface. It backs the hardware surfaces and
// stands alone in tests and headless runs.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

// Image exposes the backing image for flushing to hardware.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) Bounds() Region {
	b := c.img.Bounds()
	return Region{X: 0, Y: 0, W: b.Dx(), H: b.Dy()}
}

func (c *Canvas) FillRegion(r Region, col color.RGBA) {
	rect := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
	draw.Draw(c.img, rect, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) DrawText(x, y int, s string, col color.RGBA, scale int) {
	face := basicfont.Face7x13
	if scale <= 1 {
		drawer := &font.Drawer{
			Dst:  c.img,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.P(x, y),
		}
		drawer.DrawString(s)
		return
	}

	// render at 1x offscreen, then blit scaled blocks
	w := font.MeasureString(face, s).Ceil()
	h := face.Height
	ascent := face.Ascent
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	drawer.DrawString(s)

	originY := y - ascent*scale
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			if _, _, _, a := tmp.At(px, py).RGBA(); a == 0 {
				continue
			}
			c.FillRegion(Region{
				X: x + px*scale,
				Y: originY + py*scale,
				W: scale,
				H: scale,
			}, col)
		}
	}
}

func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) DrawRect(r Region, col color.RGBA) {
	c.FillRegion(Region{X: r.X, Y: r.Y, W: r.W, H: 1}, col)
	c.FillRegion(Region{X: r.X, Y: r.Y + r.H - 1, W: r.W, H: 1}, col)
	c.FillRegion(Region{X: r.X, Y: r.Y, W: 1, H: r.H}, col)
	c.FillRegion(Region{X: r.X + r.W - 1, Y: r.Y, W: 1, H: r.H}, col)
}

func (c *Canvas) Flush() error {
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package display

import "image/color"

var (
	black  = color.RGBA{A: 0xff}
	white  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red    = color.RGBA{R: 0xff, A: 0xff}
	green  = color.RGBA{G: 0xff, A: 0xff}
	blue   = color.RGBA{R: 0x40, G: 0x80, B: 0xff, A: 0xff}
	yellow = color.RGBA{R: 0xff, G: 0xff, A: 0xff}
	amber  = color.RGBA{R: 0xff, G: 0xa0, A: 0xff}
	gray   = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
)

// bands maps a gauge value to a color through contiguous ascending ranges.
// limits[i] is the exclusive upper bound of colors[i]; a value on a limit
// belongs to the next range up. colors has one more entry than limits.
type bands struct {
	limits []uint16
	colors []color.RGBA
}

func (b bands) pick(v uint16) color.RGBA {
	for i, limit := range b.limits {
		if v < limit {
			return b.colors[i]
		}
	}
	return b.colors[len(b.limits)]
}

var (
	coolantBands = bands{
		limits: []uint16{170, 210, 240},
		colors: []color.RGBA{blue, green, yellow, red},
	}
	rpmBands = bands{
		limits: []uint16{5500, 6200},
		colors: []color.RGBA{green, yellow, red},
	}
	oilBands = bands{
		limits: []uint16{10, 20},
		colors: []color.RGBA{red, yellow, green},
	}
	fuelBands = bands{
		limits: []uint16{15, 30},
		colors: []color.RGBA{red, yellow, green},
	}
	batteryBands = bands{ // tenths of a volt
		limits: []uint16{118, 125, 150},
		colors: []color.RGBA{red, yellow, green, red},
	}
	boostBands = bands{
		limits: []uint16{15, 20},
		colors: []color.RGBA{green, yellow, red},
	}
	speedBands = bands{
		colors: []color.RGBA{white},
	}
)

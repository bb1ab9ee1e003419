package display

import (
	"image"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// OLED drives a 128x64 SSD1306 panel over I2C. Drawing happens on an
// in-memory canvas; Flush converts to 1-bit and pushes the whole buffer.
// Band colors collapse to on/off on this surface.
type OLED struct {
	*Canvas
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

func NewOLED() (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize periph")
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open I2C bus")
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, errors.Wrap(err, "failed to initialize ssd1306")
	}
	return &OLED{
		Canvas: NewCanvas(ssd1306.DefaultOpts.W, ssd1306.DefaultOpts.H),
		bus:    bus,
		dev:    dev,
	}, nil
}

func (o *OLED) Flush() error {
	img := o.Canvas.Image()
	bounds := img.Bounds()
	mono := image1bit.NewVerticalLSB(bounds)
	// the panel paints on black, so any lit channel means a lit pixel;
	// luminance thresholding would drop dark band colors
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R|c.G|c.B != 0 {
				mono.SetBit(x, y, image1bit.On)
			}
		}
	}
	return o.dev.Draw(o.dev.Bounds(), mono, image.Point{})
}

func (o *OLED) Close() error {
	return o.bus.Close()
}

var _ Surface = (*OLED)(nil)

//go:build rp2040 || rp2350

package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// OLEDAddress is the SSD1306 7-bit address on the display I2C port.
const OLEDAddress = 0x3C

var (
	fontRegular = &proggy.TinySZ8pt7b
	white       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// OLED renders display pages on a 128x64 SSD1306 over I2C.
type OLED struct {
	dev ssd1306.Device
}

// NewOLED configures the panel on the given bus.
func NewOLED(bus drivers.I2C) *OLED {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{Address: OLEDAddress, Width: 128, Height: 64})
	dev.ClearDisplay()
	return &OLED{dev: dev}
}

func (o *OLED) RenderMeasurements(temp, hum, lux string) {
	o.dev.ClearBuffer()
	tinyfont.WriteLine(&o.dev, fontRegular, 0, 12, "T: "+temp+" C", white)
	tinyfont.WriteLine(&o.dev, fontRegular, 0, 30, "H: "+hum+" %", white)
	tinyfont.WriteLine(&o.dev, fontRegular, 0, 48, "L: "+lux+" lx", white)
	o.dev.Display()
}

func (o *OLED) RenderStatus(title, detail string, ok bool) {
	mark := "DOWN"
	if ok {
		mark = "OK"
	}
	o.dev.ClearBuffer()
	tinyfont.WriteLine(&o.dev, fontRegular, 0, 12, title+": "+mark, white)
	tinyfont.WriteLine(&o.dev, fontRegular, 0, 34, detail, white)
	o.dev.Display()
}

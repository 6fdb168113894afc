// Package display holds the renderers behind the monitor's Renderer
// capability: a console renderer for host builds and an SSD1306 OLED
// renderer for MCU builds.
package display

// Console renders display pages as log lines. Redraws at the display
// cadence are collapsed so an unchanged page prints nothing.
type Console struct {
	last string
}

func NewConsole() *Console { return &Console{} }

func (c *Console) RenderMeasurements(temp, hum, lux string) {
	line := "[ " + temp + " C | " + hum + " % | " + lux + " lx ]"
	c.emit(line)
}

func (c *Console) RenderStatus(title, detail string, ok bool) {
	mark := "DOWN"
	if ok {
		mark = "OK"
	}
	c.emit("[ " + title + ": " + mark + " | " + detail + " ]")
}

func (c *Console) emit(line string) {
	if line == c.last {
		return
	}
	c.last = line
	println(line)
}

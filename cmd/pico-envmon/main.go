//go:build rp2040 || rp2350

// Firmware entrypoint for the Pico environmental monitor.
//
// Wiring:
//
//	I2C0 GP0/GP1  100 kHz  AHT10 (0x38) + BH1750 (0x23)
//	I2C1 GP14/GP15 400 kHz SSD1306 OLED (0x3C)
//	GP5  button: previous page (pull-up, active low)
//	GP6  button: next page
//	GP22 button: reconnect
//	machine.LED  alert pulse
package main

import (
	"context"
	"machine"
	"time"

	"tinygo.org/x/drivers"

	"envmon-go/bus"
	"envmon-go/services/config"
	"envmon-go/services/display"
	"envmon-go/services/monitor"
	"envmon-go/services/netlink"
	"envmon-go/services/sensors"
	"envmon-go/services/telemetry"
	"envmon-go/types"
	"envmon-go/x/timex"
)

const buttonPollInterval = 10 * time.Millisecond

type pinLED struct {
	pin machine.Pin
}

func (l pinLED) Pulse(d time.Duration) {
	go func() {
		l.pin.High()
		time.Sleep(d)
		l.pin.Low()
	}()
}

// pollButtons watches the pull-up inputs and publishes one event per
// falling edge. The poll interval doubles as the debounce window.
func pollButtons(conn *bus.Connection) {
	pins := []struct {
		pin machine.Pin
		id  types.ButtonID
	}{
		{machine.GP5, types.ButtonPrev},
		{machine.GP6, types.ButtonNext},
		{machine.GP22, types.ButtonReconnect},
	}
	last := make([]bool, len(pins))
	for i := range pins {
		pins[i].pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		last[i] = pins[i].pin.Get()
	}
	for {
		for i := range pins {
			level := pins[i].pin.Get()
			if last[i] && !level {
				conn.Publish(conn.NewMessage(bus.T("input", "button"),
					types.ButtonEvent{ID: pins[i].id, TsMs: timex.NowMs()}, false))
			}
			last[i] = level
		}
		time.Sleep(buttonPollInterval)
	}
}

func bringUpAHT10(busI2C drivers.I2C) *sensors.AHT10 {
	for {
		dev, err := sensors.NewAHT10(busI2C)
		if err == nil {
			return dev
		}
		println("Warn: aht10 bring-up:", err.Error())
		time.Sleep(time.Second)
	}
}

func bringUpBH1750(busI2C drivers.I2C) *sensors.BH1750 {
	for {
		dev, err := sensors.NewBH1750(busI2C)
		if err == nil {
			return dev
		}
		println("Warn: bh1750 bring-up:", err.Error())
		time.Sleep(time.Second)
	}
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("Info: pico-envmon boot")

	machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 100_000,
		SDA:       machine.GP0,
		SCL:       machine.GP1,
	})
	machine.I2C1.Configure(machine.I2CConfig{
		Frequency: 400_000,
		SDA:       machine.GP14,
		SCL:       machine.GP15,
	})

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	env := bringUpAHT10(machine.I2C0)
	light := bringUpBH1750(machine.I2C0)
	oled := display.NewOLED(machine.I2C1)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico")
	b := bus.NewBus(8)

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	// Wi-Fi association and the MQTT session live in the platform network
	// stack. The hooks are injected here once that stack is up; until then
	// the link reports down and telemetry is skipped.
	link := &netlink.External{}
	netlink.NewService(link).Start(ctx, b.NewConnection("netlink"))

	go pollButtons(b.NewConnection("input"))

	svc := monitor.New(types.DefaultMonitorConfig(), monitor.Deps{
		Env:    env,
		Light:  light,
		Render: oled,
		Net:    link,
		LED:    pinLED{pin: machine.LED},
		Pub:    telemetry.NewPublisher(link),
	})
	svc.Run(ctx, b.NewConnection("monitor"))
}

//go:build !rp2040 && !rp2350

// Host simulator: runs the full firmware loop against synthetic sensors so
// the scheduler, alert engine, and wire payloads can be exercised on a
// workstation. Keyboard input stands in for the front-panel buttons:
//
//	n<enter>  next menu page
//	p<enter>  previous menu page
//	r<enter>  reconnect
//
// Set ENVMON_BROKER (e.g. tcp://localhost:1883) to publish to a real
// broker; without it the link stays down and telemetry is skipped.
package main

import (
	"bufio"
	"context"
	"math"
	"os"
	"os/signal"
	"time"

	"envmon-go/bus"
	"envmon-go/services/config"
	"envmon-go/services/display"
	"envmon-go/services/monitor"
	"envmon-go/services/netlink"
	"envmon-go/services/telemetry"
	"envmon-go/types"
)

// simEnv drifts temperature and humidity slowly in and out of the alert
// window so the edge behaviour is visible.
type simEnv struct {
	phase float64
}

func (s *simEnv) Read() (types.SensorReading, types.SensorReading) {
	s.phase += 0.05
	temp := 25 + 14*math.Sin(s.phase)
	hum := 55 + 35*math.Sin(s.phase/3)
	return types.SensorReading{Value: float32(temp), Valid: true},
		types.SensorReading{Value: float32(hum), Valid: true}
}

type simLight struct {
	phase float64
}

func (s *simLight) Read() types.SensorReading {
	s.phase += 0.04
	lux := 300 + 300*math.Sin(s.phase)
	if lux < 0 {
		lux = 0
	}
	return types.SensorReading{Value: float32(lux), Valid: true}
}

type logLED struct{}

func (logLED) Pulse(d time.Duration) {
	println("Info: alert LED pulse", int64(d/time.Millisecond), "ms")
}

func readButtons(conn *bus.Connection) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		var id types.ButtonID
		switch sc.Text() {
		case "n":
			id = types.ButtonNext
		case "p":
			id = types.ButtonPrev
		case "r":
			id = types.ButtonReconnect
		default:
			continue
		}
		conn.Publish(conn.NewMessage(bus.T("input", "button"), types.ButtonEvent{ID: id}, false))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "pico")

	println("Info: envmon host simulator starting")
	b := bus.NewBus(8)

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	netCfg, _ := config.NetConfig("pico")
	if broker := os.Getenv("ENVMON_BROKER"); broker != "" {
		netCfg.BrokerURL = broker
		netCfg.ClientID = "envmon-host"
	}

	var link types.NetLink = netlink.Disconnected{}
	if os.Getenv("ENVMON_BROKER") != "" {
		paho := netlink.NewPahoLink(netCfg)
		if err := paho.Connect(); err != nil {
			println("Warn: broker connect:", err.Error())
		}
		defer paho.Close()
		link = paho
	}
	netlink.NewService(link).Start(ctx, b.NewConnection("netlink"))

	go readButtons(b.NewConnection("input"))

	svc := monitor.New(types.DefaultMonitorConfig(), monitor.Deps{
		Env:    &simEnv{},
		Light:  &simLight{},
		Render: display.NewConsole(),
		Net:    link,
		LED:    logLED{},
		Pub:    telemetry.NewPublisher(link),
	})
	svc.Run(ctx, b.NewConnection("monitor"))

	println("Info: envmon host simulator stopped")
}

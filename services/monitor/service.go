// Package monitor is the firmware core: the application state, the
// threshold alert engine, and the cooperative multi-rate scheduler driving
// sensor reads, display refreshes and publications from one clock.
package monitor

import (
	"context"
	"time"

	"envmon-go/bus"
	"envmon-go/errcode"
	"envmon-go/services/telemetry"
	"envmon-go/types"
	"envmon-go/x/mathx"
	"envmon-go/x/timex"
)

var (
	topicButtons = bus.T("input", "button")
	topicConfig  = bus.T("config", "monitor")
	topicReport  = bus.T("report", "status")
)

// alertPulse bounds the LED notification on an alert rising edge.
const alertPulse = 100 * time.Millisecond

// Publisher is the outbound telemetry surface the monitor drives.
type Publisher interface {
	PublishData(d types.SensorData) error
	PublishAlerts(a types.AlertStatus) error
}

// Deps are the collaborators the core consumes. Env, Light, Render, Net and
// Pub are required; LED is optional. NowMs and Idle default to the real
// clock and a short sleep that yields to background link housekeeping.
type Deps struct {
	Env    types.EnvSensor
	Light  types.LightSensor
	Render types.Renderer
	Net    types.NetLink
	LED    types.StatusLED
	Pub    Publisher

	NowMs func() int64
	Idle  func()
}

type Service struct {
	cfg   types.MonitorConfig
	deps  Deps
	state AppState
	sched *Schedule
	conn  *bus.Connection
}

func New(cfg types.MonitorConfig, deps Deps) *Service {
	if deps.NowMs == nil {
		deps.NowMs = timex.NowMs
	}
	if deps.Idle == nil {
		deps.Idle = func() { time.Sleep(time.Millisecond) }
	}
	return &Service{
		cfg:   cfg,
		deps:  deps,
		state: newAppState(),
	}
}

// Run owns the state and the schedule for the process lifetime. Each
// iteration drains pending config and button events, ticks the schedule,
// and yields. Config is handled in the loop because the config service
// publishes from its own goroutine: the retained section may land before or
// after this subscription, and both orders must reach applyConfig.
// Nothing here is fatal: sensor and publish failures are absorbed into the
// state and the loop keeps going.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	s.conn = conn

	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)
	btnSub := conn.Subscribe(topicButtons)
	defer conn.Unsubscribe(btnSub)

	s.buildSchedule()
	s.sched.Arm()

	for {
		select {
		case <-ctx.Done():
			println("Info: monitor stopping")
			return
		default:
		}
		s.drainConfig(cfgSub)
		s.drainButtons(btnSub)
		s.sched.Tick()
		s.deps.Idle()
	}
}

func (s *Service) buildSchedule() {
	p := s.cfg.Periods
	s.sched = NewSchedule(s.deps.NowMs)
	s.sched.Add("sensor", p.SensorMs, s.readSensors)
	s.sched.Add("display", p.DisplayMs, s.refreshDisplay)
	s.sched.Add("report", p.ReportMs, s.reportStatus)
	s.sched.Add("telemetry", p.TelemetryMs, s.publishData)
	s.sched.Add("alerts", p.AlertMs, s.publishAlerts)
}

// ---- scheduled tasks ----

func (s *Service) readSensors() {
	t, h := s.deps.Env.Read()
	s.state.Sensors.Temperature = t
	s.state.Sensors.Humidity = h
	s.state.Sensors.Illuminance = s.deps.Light.Read()

	alerts := Evaluate(s.state.Sensors, s.cfg.Thresholds)
	rising := alerts.AnyCritical && !s.state.Alerts.AnyCritical
	s.state.Alerts = alerts

	if rising {
		println("Warn: critical condition entered")
		if s.deps.LED != nil {
			s.deps.LED.Pulse(alertPulse)
		}
	}
}

func (s *Service) refreshDisplay() {
	switch s.state.Menu {
	case types.MenuMeasurements:
		s.deps.Render.RenderMeasurements(
			formatField(s.state.Sensors.Temperature, 2),
			formatField(s.state.Sensors.Humidity, 2),
			formatField(s.state.Sensors.Illuminance, 1),
		)
	case types.MenuLink:
		st := s.deps.Net.Status()
		s.state.Net = st
		s.deps.Render.RenderStatus("WiFi", st.SSID, st.Link == types.LinkUp)
	case types.MenuAlerts:
		detail := "normal"
		if s.state.Alerts.AnyCritical {
			detail = "critical"
		}
		s.deps.Render.RenderStatus("Alerts", detail, !s.state.Alerts.AnyCritical)
	case types.MenuBroker:
		s.deps.Render.RenderStatus("MQTT", "", s.deps.Net.IsSessionUp())
	}
}

func (s *Service) reportStatus() {
	if !s.deps.Net.IsLinkUp() {
		return
	}
	body := telemetry.AppendStatusReport(nil, s.state.Sensors, s.state.Alerts)
	s.conn.Publish(s.conn.NewMessage(topicReport, string(body), true))
}

func (s *Service) publishData() {
	if err := s.deps.Pub.PublishData(s.state.Sensors); err != nil && errcode.Of(err) != errcode.Skipped {
		println("Warn: telemetry publish:", err.Error())
	}
}

func (s *Service) publishAlerts() {
	if err := s.deps.Pub.PublishAlerts(s.state.Alerts); err != nil && errcode.Of(err) != errcode.Skipped {
		println("Warn: alert publish:", err.Error())
	}
}

// ---- button events (state mutations, not scheduled tasks) ----

func (s *Service) drainButtons(sub *bus.Subscription) {
	for {
		select {
		case msg := <-sub.Channel():
			if ev, ok := msg.Payload.(types.ButtonEvent); ok {
				s.handleButton(ev)
			}
		default:
			return
		}
	}
}

func (s *Service) handleButton(ev types.ButtonEvent) {
	switch ev.ID {
	case types.ButtonPrev:
		s.state.Menu = s.state.Menu.Prev()
		println("Info: menu:", s.state.Menu.String())
	case types.ButtonNext:
		s.state.Menu = s.state.Menu.Next()
		println("Info: menu:", s.state.Menu.String())
	case types.ButtonReconnect:
		println("Info: reconnect requested")
		s.deps.Net.Reconnect()
	}
}

// ---- config ----

// drainConfig applies pending "config/monitor" sections. A new section may
// change periods, so the schedule is rebuilt and re-armed afterwards.
func (s *Service) drainConfig(sub *bus.Subscription) {
	applied := false
	for {
		select {
		case msg := <-sub.Channel():
			s.applyConfig(msg.Payload)
			applied = true
		default:
			if applied {
				println("Info: monitor config applied")
				s.buildSchedule()
				s.sched.Arm()
			}
			return
		}
	}
}

// applyConfig merges the retained "config/monitor" section (a decoded JSON
// object) over the defaults. Unknown keys are ignored.
func (s *Service) applyConfig(payload any) {
	m, ok := payload.(map[string]any)
	if !ok {
		return
	}
	if th, ok := m["thresholds"].(map[string]any); ok {
		setF32(th, "temp_min", &s.cfg.Thresholds.TempMin)
		setF32(th, "temp_max", &s.cfg.Thresholds.TempMax)
		setF32(th, "humidity_max", &s.cfg.Thresholds.HumidityMax)
		setF32(th, "lux_min", &s.cfg.Thresholds.LuxMin)
	}
	if pe, ok := m["periods"].(map[string]any); ok {
		setU32(pe, "sensor_ms", &s.cfg.Periods.SensorMs)
		setU32(pe, "display_ms", &s.cfg.Periods.DisplayMs)
		setU32(pe, "report_ms", &s.cfg.Periods.ReportMs)
		setU32(pe, "telemetry_ms", &s.cfg.Periods.TelemetryMs)
		setU32(pe, "alert_ms", &s.cfg.Periods.AlertMs)
	}
}

func setF32(m map[string]any, key string, out *float32) {
	if v, ok := asFloat(m[key]); ok {
		*out = float32(v)
	}
}

// Periods outside this range would starve a task or hot-spin the loop.
const (
	minPeriodMs = 50
	maxPeriodMs = 3_600_000
)

func setU32(m map[string]any, key string, out *uint32) {
	if v, ok := asFloat(m[key]); ok && v > 0 {
		*out = uint32(mathx.Clamp(v, minPeriodMs, maxPeriodMs))
	}
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"envmon-go/bus"
	"envmon-go/drivers/aht10"
	"envmon-go/drivers/bh1750"
	"envmon-go/services/config"
	"envmon-go/services/sensors"
	"envmon-go/services/telemetry"
	"envmon-go/types"
)

func fastAHTConfig() aht10.Config {
	return aht10.Config{ResetDelay: time.Microsecond, InitDelay: time.Microsecond, ConvDelay: time.Microsecond}
}

func fastBHConfig() bh1750.Config {
	return bh1750.Config{FirstConvDelay: time.Microsecond}
}

// ---- collaborator fakes ----

type fakeEnv struct {
	temp, hum types.SensorReading
}

func (f *fakeEnv) Read() (types.SensorReading, types.SensorReading) { return f.temp, f.hum }

type fakeLight struct {
	lux types.SensorReading
}

func (f *fakeLight) Read() types.SensorReading { return f.lux }

type renderCall struct {
	kind   string // "measurements" or "status"
	fields [3]string
	title  string
	ok     bool
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls []renderCall
}

func (f *fakeRenderer) RenderMeasurements(temp, hum, lux string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, renderCall{kind: "measurements", fields: [3]string{temp, hum, lux}})
}

func (f *fakeRenderer) RenderStatus(title, detail string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, renderCall{kind: "status", title: title, ok: ok})
}

func (f *fakeRenderer) last() (renderCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return renderCall{}, false
	}
	return f.calls[len(f.calls)-1], true
}

type published struct {
	topic   string
	payload string
}

type fakeNet struct {
	mu         sync.Mutex
	link       bool
	session    bool
	pubs       []published
	reconnects int
}

func (f *fakeNet) IsLinkUp() bool    { return f.link }
func (f *fakeNet) IsSessionUp() bool { return f.session }

func (f *fakeNet) Publish(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pubs = append(f.pubs, published{topic: topic, payload: string(payload)})
	return nil
}

func (f *fakeNet) Reconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
}

func (f *fakeNet) Status() types.NetStatus {
	st := types.NetStatus{SSID: "lab", Link: types.LinkDown, Session: types.LinkDown}
	if f.link {
		st.Link = types.LinkUp
	}
	if f.session {
		st.Session = types.LinkUp
	}
	return st
}

type fakeLED struct{ pulses int }

func (f *fakeLED) Pulse(time.Duration) { f.pulses++ }

func newTestService(env *fakeEnv, light *fakeLight, rend *fakeRenderer, net *fakeNet, led *fakeLED) *Service {
	deps := Deps{
		Env:    env,
		Light:  light,
		Render: rend,
		Net:    net,
		Pub:    telemetry.NewPublisher(net),
		NowMs:  func() int64 { return 0 },
	}
	if led != nil {
		deps.LED = led
	}
	s := New(types.DefaultMonitorConfig(), deps)
	s.buildSchedule()
	return s
}

// ---- task behaviour ----

func TestReadSensors_AlertEdgePulsesOnce(t *testing.T) {
	env := &fakeEnv{temp: valid(40), hum: valid(50)}
	light := &fakeLight{lux: valid(200)}
	led := &fakeLED{}
	s := newTestService(env, light, &fakeRenderer{}, &fakeNet{}, led)

	s.readSensors()
	if !s.state.Alerts.TempCritical || !s.state.Alerts.AnyCritical {
		t.Fatalf("alerts = %+v", s.state.Alerts)
	}
	if led.pulses != 1 {
		t.Fatalf("pulses = %d, want 1 on rising edge", led.pulses)
	}

	// Still critical: no re-pulse.
	s.readSensors()
	if led.pulses != 1 {
		t.Fatalf("pulses = %d after steady critical, want 1", led.pulses)
	}

	// Recover, then re-enter: one more pulse.
	env.temp = valid(25)
	s.readSensors()
	if s.state.Alerts.AnyCritical {
		t.Fatal("expected recovery")
	}
	env.temp = valid(10)
	s.readSensors()
	if led.pulses != 2 {
		t.Fatalf("pulses = %d after re-entry, want 2", led.pulses)
	}
}

func TestRefreshDisplay_InvalidReadingShowsNoData(t *testing.T) {
	env := &fakeEnv{} // both invalid
	light := &fakeLight{lux: valid(120.04)}
	rend := &fakeRenderer{}
	s := newTestService(env, light, rend, &fakeNet{}, nil)

	s.readSensors()
	s.refreshDisplay()

	call, ok := rend.last()
	if !ok || call.kind != "measurements" {
		t.Fatalf("unexpected render call: %+v", call)
	}
	if call.fields[0] != "--" || call.fields[1] != "--" {
		t.Fatalf("invalid readings rendered as %q/%q, want --", call.fields[0], call.fields[1])
	}
	if call.fields[2] != "120.0" {
		t.Fatalf("lux field = %q, want 120.0", call.fields[2])
	}
}

func TestPublish_SkippedWhileLinkDown(t *testing.T) {
	env := &fakeEnv{temp: valid(25), hum: valid(50)}
	net := &fakeNet{link: false, session: false}
	s := newTestService(env, &fakeLight{lux: valid(100)}, &fakeRenderer{}, net, nil)

	s.readSensors()
	s.publishData()
	s.publishAlerts()

	if len(net.pubs) != 0 {
		t.Fatalf("published %d messages on a down link", len(net.pubs))
	}
}

func TestPublishAlerts_OnlyWhileCritical(t *testing.T) {
	env := &fakeEnv{temp: valid(25), hum: valid(50)}
	net := &fakeNet{link: true, session: true}
	s := newTestService(env, &fakeLight{lux: valid(100)}, &fakeRenderer{}, net, nil)

	s.readSensors()
	s.publishAlerts()
	if len(net.pubs) != 0 {
		t.Fatal("alert published without a critical condition")
	}

	env.temp = valid(40)
	s.readSensors()
	s.publishAlerts()
	if len(net.pubs) != 1 || net.pubs[0].topic != telemetry.AlertTopic {
		t.Fatalf("pubs = %+v", net.pubs)
	}
	want := `{"alerta":"critico","temperatura_critica":true,"umidade_critica":false,"luz_critica":false}`
	if net.pubs[0].payload != want {
		t.Fatalf("alert payload = %s", net.pubs[0].payload)
	}
}

// ---- end to end: raw frames through decode, state, and the wire payload ----

type scriptedI2C struct {
	frame []byte
}

func (f *scriptedI2C) Tx(addr uint16, w, r []byte) error {
	copy(r, f.frame)
	return nil
}

func TestEndToEnd_FramesToJSON(t *testing.T) {
	ahtBus := &scriptedI2C{frame: []byte{0x00, 0x19, 0x99, 0x99, 0x33, 0x33}}
	luxBus := &scriptedI2C{frame: []byte{0x00, 0x78}} // raw 120

	env, err := sensors.NewAHT10(ahtBus, fastAHTConfig())
	if err != nil {
		t.Fatalf("aht10 bring-up: %v", err)
	}
	light, err := sensors.NewBH1750(luxBus, fastBHConfig())
	if err != nil {
		t.Fatalf("bh1750 bring-up: %v", err)
	}

	net := &fakeNet{link: true, session: true}
	s := New(types.DefaultMonitorConfig(), Deps{
		Env:    env,
		Light:  light,
		Render: &fakeRenderer{},
		Net:    net,
		Pub:    telemetry.NewPublisher(net),
		NowMs:  func() int64 { return 0 },
	})
	s.buildSchedule()

	s.readSensors()
	s.publishData()

	if len(net.pubs) != 1 || net.pubs[0].topic != telemetry.DataTopic {
		t.Fatalf("pubs = %+v", net.pubs)
	}
	want := `{"temperatura":65.00,"umidade":10.00,"pressao":nan,"luminosidade":100.0}`
	if net.pubs[0].payload != want {
		t.Fatalf("data payload = %s\n           want = %s", net.pubs[0].payload, want)
	}
}

// ---- loop behaviour: buttons and reconnect requests over the bus ----

func TestRun_ButtonsCycleMenuAndRequestReconnect(t *testing.T) {
	env := &fakeEnv{temp: valid(25), hum: valid(50)}
	rend := &fakeRenderer{}
	net := &fakeNet{link: true, session: true}

	var clock atomic.Int64
	s := New(types.DefaultMonitorConfig(), Deps{
		Env:    env,
		Light:  &fakeLight{lux: valid(100)},
		Render: rend,
		Net:    net,
		Pub:    telemetry.NewPublisher(net),
		NowMs:  clock.Load,
		Idle: func() {
			clock.Add(50)
			time.Sleep(time.Millisecond)
		},
	})

	b := bus.NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, b.NewConnection("monitor"))
		close(done)
	}()

	input := b.NewConnection("input")
	press := func(id types.ButtonID) {
		input.Publish(input.NewMessage(bus.T("input", "button"), types.ButtonEvent{ID: id}, false))
	}

	// Wait for the first render so the loop (and its subscriptions) is up.
	deadlineUp := time.After(2 * time.Second)
	for {
		if _, ok := rend.last(); ok {
			break
		}
		select {
		case <-deadlineUp:
			t.Fatal("timeout waiting for loop start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	press(types.ButtonNext)      // -> link page
	press(types.ButtonReconnect) // -> reconnect request

	deadline := time.After(2 * time.Second)
	for {
		call, ok := rend.last()
		if ok && call.kind == "status" && call.title == "WiFi" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for link page render")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	net.mu.Lock()
	defer net.mu.Unlock()
	if net.reconnects != 1 {
		t.Fatalf("reconnects = %d, want 1", net.reconnects)
	}
}

func TestApplyConfig_OverridesDefaults(t *testing.T) {
	s := New(types.DefaultMonitorConfig(), Deps{NowMs: func() int64 { return 0 }})
	s.applyConfig(map[string]any{
		"thresholds": map[string]any{"temp_max": 40.0, "lux_min": 10.0},
		"periods":    map[string]any{"sensor_ms": 1000.0},
	})
	if s.cfg.Thresholds.TempMax != 40.0 || s.cfg.Thresholds.LuxMin != 10.0 {
		t.Fatalf("thresholds = %+v", s.cfg.Thresholds)
	}
	if s.cfg.Thresholds.TempMin != 15.0 {
		t.Fatal("untouched threshold changed")
	}
	if s.cfg.Periods.SensorMs != 1000 || s.cfg.Periods.DisplayMs != 200 {
		t.Fatalf("periods = %+v", s.cfg.Periods)
	}
}

func TestApplyConfig_ClampsAbsurdPeriods(t *testing.T) {
	s := New(types.DefaultMonitorConfig(), Deps{NowMs: func() int64 { return 0 }})
	s.applyConfig(map[string]any{
		"periods": map[string]any{"display_ms": 1.0, "alert_ms": 1e9},
	})
	if s.cfg.Periods.DisplayMs != minPeriodMs {
		t.Fatalf("display_ms = %d, want %d", s.cfg.Periods.DisplayMs, minPeriodMs)
	}
	if s.cfg.Periods.AlertMs != maxPeriodMs {
		t.Fatalf("alert_ms = %d, want %d", s.cfg.Periods.AlertMs, maxPeriodMs)
	}
}

// The config service publishes from its own goroutine; whether the retained
// section lands before or after the monitor subscribes, the running loop
// must adopt it. 32 C sits inside the default window, so an alert can only
// appear once the embedded temp_max of 30 takes effect.
func TestRun_AdoptsEmbeddedConfig(t *testing.T) {
	oldLookup := config.EmbeddedConfigLookup
	config.EmbeddedConfigLookup = func(string) ([]byte, bool) {
		return []byte(`{"monitor":{"thresholds":{"temp_max":30}}}`), true
	}
	t.Cleanup(func() { config.EmbeddedConfigLookup = oldLookup })

	env := &fakeEnv{temp: valid(32), hum: valid(50)}
	net := &fakeNet{link: true, session: true}

	var clock atomic.Int64
	s := New(types.DefaultMonitorConfig(), Deps{
		Env:    env,
		Light:  &fakeLight{lux: valid(100)},
		Render: &fakeRenderer{},
		Net:    net,
		Pub:    telemetry.NewPublisher(net),
		NowMs:  clock.Load,
		Idle: func() {
			clock.Add(50)
			time.Sleep(time.Millisecond)
		},
	})

	b := bus.NewBus(8)
	ctx, cancel := context.WithCancel(context.Background())
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "pico")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	done := make(chan struct{})
	go func() {
		s.Run(ctx, b.NewConnection("monitor"))
		close(done)
	}()

	deadline := time.After(3 * time.Second)
	for {
		net.mu.Lock()
		alerted := false
		for _, p := range net.pubs {
			if p.topic == telemetry.AlertTopic {
				alerted = true
			}
		}
		net.mu.Unlock()
		if alerted {
			break
		}
		select {
		case <-deadline:
			t.Fatal("embedded config not adopted: 32C never critical with temp_max 30")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

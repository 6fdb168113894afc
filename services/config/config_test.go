package config

import (
	"context"
	"testing"
	"time"

	"envmon-go/bus"
)

func TestConfig_PublishEmbedded_RetainedPerSection(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`{
			"monitor": {"thresholds": {"temp_max": 40}},
			"netlink": {"ssid": "bench"}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	svc.Start(ctx, conn)

	// Retained sections replay to a late subscriber.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))

	got := map[string]any{}
	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < 2 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			key, ok := m.Topic.At(1).(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic.At(1))
			}
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 retained sections, got %d (%v)", len(got), got)
	}

	mon, ok := got["monitor"].(map[string]any)
	if !ok {
		t.Fatalf("monitor payload type = %T", got["monitor"])
	}
	th, ok := mon["thresholds"].(map[string]any)
	if !ok {
		t.Fatalf("thresholds type = %T", mon["thresholds"])
	}
	if v, ok := th["temp_max"].(float64); !ok || v != 40 {
		t.Fatalf("temp_max = %#v, want 40", th["temp_max"])
	}

	nl, ok := got["netlink"].(map[string]any)
	if !ok {
		t.Fatalf("netlink payload type = %T", got["netlink"])
	}
	if ssid, ok := nl["ssid"].(string); !ok || ssid != "bench" {
		t.Fatalf("ssid = %#v, want \"bench\"", nl["ssid"])
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}

func TestConfig_DefaultPicoSectionsParse(t *testing.T) {
	b := bus.NewBus(16)
	conn := b.NewConnection("test-defaults")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	if err := svc.publishConfig(ctx, conn); err != nil {
		t.Fatalf("publish: %v", err)
	}

	sub := conn.Subscribe(bus.T(configPrefix, "monitor"))
	select {
	case m := <-sub.Channel():
		mon, ok := m.Payload.(map[string]any)
		if !ok {
			t.Fatalf("payload type = %T", m.Payload)
		}
		periods, ok := mon["periods"].(map[string]any)
		if !ok {
			t.Fatalf("periods type = %T", mon["periods"])
		}
		if v, ok := periods["sensor_ms"].(float64); !ok || v != 2000 {
			t.Fatalf("sensor_ms = %#v, want 2000", periods["sensor_ms"])
		}
	case <-time.After(time.Second):
		t.Fatal("no retained monitor section")
	}
}

func TestNetConfig_DecodesEmbeddedSection(t *testing.T) {
	cfg, ok := NetConfig("pico")
	if !ok {
		t.Fatal("no netlink section in pico config")
	}
	if cfg.BrokerURL != "tcp://broker.local:1883" {
		t.Fatalf("broker = %q", cfg.BrokerURL)
	}
	if cfg.SSID != "lab" || cfg.ClientID != "pico-envmon" {
		t.Fatalf("cfg = %+v", cfg)
	}

	if _, ok := NetConfig("unknown-device"); ok {
		t.Fatal("unexpected config for unknown device")
	}
}

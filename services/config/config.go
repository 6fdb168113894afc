// Package config publishes per-device configuration onto the bus. The
// config JSON is embedded in the binary; each top-level section is
// published retained under {"config", <section>}, so services pick up
// their section whenever they subscribe.
package config

import (
	"context"
	"errors"

	"github.com/andreyvit/tinyjson"

	"envmon-go/bus"
	"envmon-go/types"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key holding the device ID
)

// EmbeddedConfigLookup resolves a device ID to its raw config JSON. Tests
// and host builds may override it.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig decodes the embedded JSON for the device in ctx and
// publishes each top-level section as a retained message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return errors.New("embedded config is not a JSON object")
	}

	for k, v := range m {
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  v,
			Retained: true,
		})
	}

	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("Warn: config:", err.Error())
		}
	}()
}

// NetConfig decodes the "netlink" section of the embedded config for the
// given device. Used by entrypoints that need the broker settings before
// the bus is up.
func NetConfig(device string) (types.NetConfig, bool) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return types.NetConfig{}, false
	}
	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return types.NetConfig{}, false
	}
	nl, ok := m["netlink"].(map[string]any)
	if !ok {
		return types.NetConfig{}, false
	}
	var cfg types.NetConfig
	cfg.SSID, _ = nl["ssid"].(string)
	cfg.BrokerURL, _ = nl["broker_url"].(string)
	cfg.ClientID, _ = nl["client_id"].(string)
	return cfg, true
}

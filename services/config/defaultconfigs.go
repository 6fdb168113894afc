package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "monitor": {
      "thresholds": {
          "temp_min": 15,
          "temp_max": 35,
          "humidity_max": 80,
          "lux_min": 50
      },
      "periods": {
          "sensor_ms": 2000,
          "display_ms": 200,
          "report_ms": 5000,
          "telemetry_ms": 10000,
          "alert_ms": 30000
      }
  },
  "netlink": {
      "ssid": "lab",
      "broker_url": "tcp://broker.local:1883",
      "client_id": "pico-envmon"
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}

package types

// ---- Service configuration ----

// Periods are the scheduler cadences in milliseconds.
type Periods struct {
	SensorMs    uint32 `json:"sensor_ms"`
	DisplayMs   uint32 `json:"display_ms"`
	ReportMs    uint32 `json:"report_ms"`
	TelemetryMs uint32 `json:"telemetry_ms"`
	AlertMs     uint32 `json:"alert_ms"`
}

// MonitorConfig is the "monitor" section of the device config.
type MonitorConfig struct {
	Thresholds Thresholds `json:"thresholds"`
	Periods    Periods    `json:"periods"`
}

// NetConfig is the "netlink" section of the device config.
type NetConfig struct {
	SSID      string `json:"ssid"`
	BrokerURL string `json:"broker_url"`
	ClientID  string `json:"client_id"`
}

// DefaultThresholds mirrors the product limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempMin:     15.0,
		TempMax:     35.0,
		HumidityMax: 80.0,
		LuxMin:      50.0,
	}
}

// DefaultPeriods mirrors the shipped task cadences.
func DefaultPeriods() Periods {
	return Periods{
		SensorMs:    2000,
		DisplayMs:   200,
		ReportMs:    5000,
		TelemetryMs: 10000,
		AlertMs:     30000,
	}
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Thresholds: DefaultThresholds(),
		Periods:    DefaultPeriods(),
	}
}

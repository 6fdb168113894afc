package monitor

import (
	"envmon-go/types"
	"envmon-go/x/mathx"
)

// Evaluate computes a fresh alert snapshot from the current readings and the
// configured thresholds. Pure: no side effects, no carryover from previous
// snapshots. An invalid reading never raises its flag, whatever numeric
// value it happens to carry.
func Evaluate(d types.SensorData, th types.Thresholds) types.AlertStatus {
	var a types.AlertStatus
	if d.Temperature.Valid && !mathx.Between(d.Temperature.Value, th.TempMin, th.TempMax) {
		a.TempCritical = true
	}
	if d.Humidity.Valid && d.Humidity.Value > th.HumidityMax {
		a.HumidityCritical = true
	}
	if d.Illuminance.Valid && d.Illuminance.Value < th.LuxMin {
		a.LuxCritical = true
	}
	a.AnyCritical = a.TempCritical || a.HumidityCritical || a.LuxCritical
	return a
}

// Package telemetry builds the wire payloads for the remote broker and the
// local status report, and gates their publication on the reported link
// state. Payload layout matches the deployed dashboard consumers, so field
// names stay in Portuguese and absent values are emitted as nan.
package telemetry

import (
	"envmon-go/types"
	"envmon-go/x/strx"
)

// Logical broker topics.
const (
	DataTopic  = "pico_w/sensors/data"
	AlertTopic = "pico_w/sensors/alerts"
)

// AppendData builds the periodic data payload:
//
//	{"temperatura":<2dp>,"umidade":<2dp>,"pressao":<2dp>,"luminosidade":<1dp>}
//
// Quantities this hardware does not measure (pressure) and invalid readings
// are emitted as nan, never as a stale or placeholder number.
func AppendData(dst []byte, d types.SensorData) []byte {
	dst = append(dst, `{"temperatura":`...)
	dst = appendReading(dst, d.Temperature, 2)
	dst = append(dst, `,"umidade":`...)
	dst = appendReading(dst, d.Humidity, 2)
	dst = append(dst, `,"pressao":`...)
	dst = append(dst, "nan"...) // no pressure sensor fitted
	dst = append(dst, `,"luminosidade":`...)
	dst = appendReading(dst, d.Illuminance, 1)
	return append(dst, '}')
}

// AppendAlert builds the critical-alert payload. Callers only send it while
// AnyCritical holds.
func AppendAlert(dst []byte, a types.AlertStatus) []byte {
	dst = append(dst, `{"alerta":"critico","temperatura_critica":`...)
	dst = strx.AppendBool(dst, a.TempCritical)
	dst = append(dst, `,"umidade_critica":`...)
	dst = strx.AppendBool(dst, a.HumidityCritical)
	dst = append(dst, `,"luz_critica":`...)
	dst = strx.AppendBool(dst, a.LuxCritical)
	return append(dst, '}')
}

// AppendStatusReport builds the local snapshot used by the periodic status
// report task (readings plus per-quantity alert flags).
func AppendStatusReport(dst []byte, d types.SensorData, a types.AlertStatus) []byte {
	dst = append(dst, `{"temperatura":`...)
	dst = appendReading(dst, d.Temperature, 2)
	dst = append(dst, `,"umidade":`...)
	dst = appendReading(dst, d.Humidity, 2)
	dst = append(dst, `,"luminosidade":`...)
	dst = appendReading(dst, d.Illuminance, 2)
	dst = append(dst, `,"alertas":{"temperatura":`...)
	dst = strx.AppendBool(dst, a.TempCritical)
	dst = append(dst, `,"umidade":`...)
	dst = strx.AppendBool(dst, a.HumidityCritical)
	dst = append(dst, `,"luminosidade":`...)
	dst = strx.AppendBool(dst, a.LuxCritical)
	return append(dst, "}}"...)
}

func appendReading(dst []byte, r types.SensorReading, decimals int) []byte {
	if !r.Valid {
		return append(dst, "nan"...)
	}
	return strx.AppendFixed(dst, r.Value, decimals)
}

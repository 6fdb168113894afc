package monitor

import (
	"envmon-go/types"
	"envmon-go/x/strx"
)

// noData is what the display shows for an invalid reading. Never a number,
// never a stale value.
const noData = "--"

func formatField(r types.SensorReading, decimals int) string {
	if !r.Valid {
		return noData
	}
	return strx.FormatFixed(r.Value, decimals)
}

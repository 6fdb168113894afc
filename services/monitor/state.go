package monitor

import "envmon-go/types"

// AppState is the record mutated by scheduler ticks. It is owned exclusively
// by the service loop; everything handed out is a copy, never a retained
// reference.
type AppState struct {
	Menu    types.MenuID
	Sensors types.SensorData
	Alerts  types.AlertStatus
	Net     types.NetStatus
}

// newAppState starts with every reading invalid; nothing is reported or
// rendered as a measurement until the first successful sensor cycle.
func newAppState() AppState {
	return AppState{Menu: types.MenuMeasurements}
}

// Snapshot returns a copy of the current state. Call it from the loop's own
// callbacks (tasks, button handlers) or from tests; the loop owns the
// original.
func (s *Service) Snapshot() AppState {
	return s.state
}

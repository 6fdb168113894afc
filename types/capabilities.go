package types

import "time"

// ------------------------
// Capability interfaces
//
// The monitor core consumes these; concrete implementations live in the
// services and cmd wiring. None of them may retain references into the
// caller's state.
// ------------------------

// EnvSensor yields the latest temperature and humidity readings. A failed or
// busy transaction surfaces as Valid=false on both, never as an error.
type EnvSensor interface {
	Read() (temp, hum SensorReading)
}

// LightSensor yields the latest illuminance reading.
type LightSensor interface {
	Read() SensorReading
}

// Renderer is the display sink. It receives pre-formatted fields and owns
// layout plus the physical refresh; the core never touches pixels.
type Renderer interface {
	// RenderMeasurements shows the three formatted quantities. Invalid
	// readings arrive as an explicit "no data" marker, never a number.
	RenderMeasurements(temp, hum, lux string)
	// RenderStatus shows a titled boolean page (link, alerts, broker).
	RenderStatus(title, detail string, ok bool)
}

// NetLink is the network/broker collaborator. Session management (Wi-Fi
// association, MQTT handshake) happens behind this interface; the core only
// queries status, publishes, and requests out-of-band reconnection.
type NetLink interface {
	IsLinkUp() bool
	IsSessionUp() bool
	// Publish sends payload on topic. Implementations return
	// errcode.Skipped when the link or session is down; the core treats
	// that as a silent no-op.
	Publish(topic string, payload []byte) error
	// Reconnect asks the collaborator to re-establish the link. It must
	// not block the caller beyond starting the attempt.
	Reconnect()
	Status() NetStatus
}

// StatusLED is the visual alert indicator. Pulse is fire-and-forget and must
// not block the caller for the pulse duration.
type StatusLED interface {
	Pulse(d time.Duration)
}

package types

// ---- Sensor readings ----

// SensorReading is one calibrated physical value. Valid=false means the last
// bus transaction failed or the sensor reported busy; Value is then undefined
// and must never be rendered or reported as a measurement.
type SensorReading struct {
	Value float32
	Valid bool
}

// SensorData is the latest reading per physical quantity.
type SensorData struct {
	Temperature SensorReading // °C
	Humidity    SensorReading // %RH
	Illuminance SensorReading // lux
}

// ---- Alerts ----

// AlertStatus is one threshold-evaluation snapshot. It is always recomputed
// wholesale; flags are never merged with a previous snapshot.
type AlertStatus struct {
	TempCritical     bool
	HumidityCritical bool
	LuxCritical      bool
	AnyCritical      bool
}

// Thresholds are the configured critical limits.
type Thresholds struct {
	TempMin     float32 // °C, below is critical
	TempMax     float32 // °C, above is critical
	HumidityMax float32 // %RH, above is critical
	LuxMin      float32 // lux, below is critical
}

// ---- Link state ----

// Link is the reported state of the wireless link or broker session.
type Link string

const (
	LinkUp   Link = "up"
	LinkDown Link = "down"
)

// NetStatus is the collaborator-reported network state snapshot.
type NetStatus struct {
	SSID    string
	IP      string
	Link    Link
	Session Link
}

// ---- Display menu ----

// MenuID selects which page the renderer shows.
type MenuID uint8

const (
	MenuMeasurements MenuID = iota
	MenuLink
	MenuAlerts
	MenuBroker
	menuCount
)

func (m MenuID) Next() MenuID { return (m + 1) % menuCount }
func (m MenuID) Prev() MenuID { return (m + menuCount - 1) % menuCount }

func (m MenuID) String() string {
	switch m {
	case MenuMeasurements:
		return "measurements"
	case MenuLink:
		return "link"
	case MenuAlerts:
		return "alerts"
	case MenuBroker:
		return "broker"
	}
	return "?"
}

// ---- Buttons ----

// ButtonID names the debounced navigation buttons.
type ButtonID uint8

const (
	ButtonPrev      ButtonID = iota // previous menu page
	ButtonNext                      // next menu page
	ButtonReconnect                 // request link reconnection
)

// ButtonEvent is one debounced press edge. Debouncing is the input source's
// contract; consumers treat each event as a single press.
type ButtonEvent struct {
	ID   ButtonID
	TsMs int64
}

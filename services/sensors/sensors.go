// Package sensors adapts the chip drivers to the reading contracts the
// monitor core consumes. Driver errors stop at this boundary: a failed or
// busy transaction becomes an invalid reading, never a propagated error,
// and the next poll starts fresh.
package sensors

import (
	"tinygo.org/x/drivers"

	"envmon-go/drivers/aht10"
	"envmon-go/drivers/bh1750"
	"envmon-go/types"
)

// AHT10 is the temperature/humidity source.
type AHT10 struct {
	dev aht10.Device
}

// NewAHT10 brings the sensor up (reset + init) on the given bus. A bring-up
// failure is surfaced: without init the device never leaves busy.
func NewAHT10(bus drivers.I2C, cfgs ...aht10.Config) (*AHT10, error) {
	a := &AHT10{dev: aht10.New(bus)}
	if err := a.dev.Configure(cfgs...); err != nil {
		return nil, err
	}
	return a, nil
}

// Read performs one measurement cycle. Both readings share validity: the
// frame either decoded or it did not.
func (a *AHT10) Read() (temp, hum types.SensorReading) {
	var s aht10.Sample
	if err := a.dev.Read(&s); err != nil {
		return types.SensorReading{}, types.SensorReading{}
	}
	return types.SensorReading{Value: s.Celsius(), Valid: true},
		types.SensorReading{Value: s.RelHumidity(), Valid: true}
}

// BH1750 is the illuminance source.
type BH1750 struct {
	dev bh1750.Device
}

// NewBH1750 puts the sensor into continuous mode on the given bus.
func NewBH1750(bus drivers.I2C, cfgs ...bh1750.Config) (*BH1750, error) {
	l := &BH1750{dev: bh1750.New(bus)}
	if err := l.dev.Configure(cfgs...); err != nil {
		return nil, err
	}
	return l, nil
}

// Read fetches the free-running measurement. On failure the value is the 0
// placeholder with Valid=false; consumers must not show it as a reading.
func (l *BH1750) Read() types.SensorReading {
	raw, err := l.dev.Read()
	if err != nil {
		return types.SensorReading{Value: 0, Valid: false}
	}
	return types.SensorReading{Value: bh1750.Lux(raw), Valid: true}
}

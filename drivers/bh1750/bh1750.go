// Package bh1750 provides a driver for the BH1750 ambient light sensor.
// Configure puts the device into continuous high-resolution mode once; it
// then free-runs, so each Read is a bare 2-byte register fetch with no
// trigger. Lux conversion follows the datasheet default sensitivity
// (lux = raw / 1.2).
package bh1750

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x23

// Continuous high-resolution mode, 1 lx resolution.
const cmdContHighRes = 0x10

// ErrTx is returned when the 2-byte result read does not complete.
var ErrTx = errors.New("bh1750: transaction failed")

// Config controls timing behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x23 if zero.
	Address uint16
	// FirstConvDelay is the wait after mode selection before the first
	// measurement is available. Default 180 ms (datasheet max).
	FirstConvDelay time.Duration
}

// Device wraps an I2C connection to a BH1750 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [2]byte
}

// New creates a new BH1750 connection. The I2C bus must already be
// configured. This function does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure selects continuous high-resolution mode and waits out the first
// conversion. Performed once at bring-up.
func (d *Device) Configure(cfgs ...Config) error {
	c := Config{}
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address != 0 {
		d.Address = c.Address
	}
	if c.FirstConvDelay <= 0 {
		c.FirstConvDelay = 180 * time.Millisecond
	}

	if err := d.bus.Tx(d.Address, []byte{cmdContHighRes}, nil); err != nil {
		return ErrTx
	}
	time.Sleep(c.FirstConvDelay)
	return nil
}

// Read fetches the current raw 16-bit measurement (big-endian). The device
// refreshes it internally about every 120 ms in continuous mode.
func (d *Device) Read() (uint16, error) {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, nil, data); err != nil {
		return 0, ErrTx
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}

// Lux converts a raw measurement to lux at default sensitivity.
func Lux(raw uint16) float32 {
	return float32(raw) / 1.2
}

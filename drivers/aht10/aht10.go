// Package aht10 provides a driver for the AHT10 temperature/humidity sensor.
// The device is brought up once with Configure (soft reset + initialization),
// after which each Read performs one measurement cycle:
//
//	trigger command -> fixed conversion wait -> 6-byte result read
//
// A busy status or an incomplete transaction surfaces as an error; the driver
// never retries. Raw 20-bit values are exposed on Sample together with the
// datasheet calibration helpers.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package aht10

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x38

// Commands and status bits (per datasheet).
const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xE1
	cmdSoftReset  = 0xBA

	statusBusy = 0x80
)

// Errors returned by the driver.
var (
	ErrBusy = errors.New("aht10: busy")
	ErrTx   = errors.New("aht10: transaction failed")
)

// Config controls timing behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x38 if zero.
	Address uint16
	// ResetDelay is the settle time after the soft reset. Default 20 ms.
	ResetDelay time.Duration
	// InitDelay is the settle time after the initialization command,
	// covering internal calibration. Default 300 ms.
	InitDelay time.Duration
	// ConvDelay is the fixed conversion wait between trigger and result
	// read. Default 80 ms (datasheet max).
	ConvDelay time.Duration
}

// Device wraps an I2C connection to an AHT10 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg Config
	buf [6]byte // reuse buffer to avoid allocations
}

// New creates a new AHT10 connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure runs the bring-up sequence: soft reset, settle, initialization,
// settle. It is performed once, not on every read.
func (d *Device) Configure(cfgs ...Config) error {
	c := Config{}
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address != 0 {
		d.Address = c.Address
	}
	if c.ResetDelay <= 0 {
		c.ResetDelay = 20 * time.Millisecond
	}
	if c.InitDelay <= 0 {
		c.InitDelay = 300 * time.Millisecond
	}
	if c.ConvDelay <= 0 {
		c.ConvDelay = 80 * time.Millisecond
	}
	d.cfg = c

	if err := d.bus.Tx(d.Address, []byte{cmdSoftReset}, nil); err != nil {
		return ErrTx
	}
	time.Sleep(c.ResetDelay)

	if err := d.bus.Tx(d.Address, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return ErrTx
	}
	time.Sleep(c.InitDelay)
	return nil
}

// Trigger starts a measurement. It is a quick register write with no blocking.
func (d *Device) Trigger() error {
	if err := d.bus.Tx(d.Address, []byte{cmdTrigger, 0x33, 0x00}, nil); err != nil {
		return ErrTx
	}
	return nil
}

// ConvDelay returns the fixed wait between Trigger and Collect.
func (d *Device) ConvDelay() time.Duration {
	if d.cfg.ConvDelay > 0 {
		return d.cfg.ConvDelay
	}
	return 80 * time.Millisecond
}

// Collect reads one 6-byte result into the provided sample. ErrBusy is
// returned when the device reports the conversion is still running; the
// sample is then untouched and the cycle counts as failed (no retry here).
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, nil, data); err != nil {
		return ErrTx
	}
	if data[0]&statusBusy != 0 {
		return ErrBusy
	}
	decode(data, out)
	return nil
}

// Read performs a full measurement cycle: Trigger, fixed conversion wait,
// one Collect. Failures surface as errors and are never masked by retries.
func (d *Device) Read(out *Sample) error {
	if err := d.Trigger(); err != nil {
		return err
	}
	time.Sleep(d.ConvDelay())
	return d.Collect(out)
}

// decode unpacks the two 20-bit raw values from a 6-byte result frame.
// Byte 0 is the status byte; humidity spans bytes 1-3, temperature 3-5.
func decode(data []byte, out *Sample) {
	hraw := (uint32(data[1]) << 12) | (uint32(data[2]) << 4) | (uint32(data[3]) >> 4)
	traw := (uint32(data[3]&0x0F) << 16) | (uint32(data[4]) << 8) | uint32(data[5])
	if out != nil {
		out.RawHumidity = hraw
		out.RawTemp = traw
	}
}

// Sample holds raw readings.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

// RelHumidity returns relative humidity in percent.
func (s Sample) RelHumidity() float32 {
	return (float32(s.RawHumidity) * 100) / 0x100000
}

// Celsius returns the temperature in °C.
func (s Sample) Celsius() float32 {
	return (float32(s.RawTemp)*200)/0x100000 - 50
}

// Fixed-point helpers returning tenths of units (deci-°C, deci-%RH).

func (s Sample) DeciRelHumidity() int32 {
	return int32((uint64(s.RawHumidity) * 1000) >> 20)
}

func (s Sample) DeciCelsius() int32 {
	return int32((uint64(s.RawTemp)*2000)>>20) - 500
}

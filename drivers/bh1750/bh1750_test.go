package bh1750

import (
	"errors"
	"testing"
	"time"

	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*fakeI2C)(nil)

type fakeI2C struct {
	writes [][]byte
	raw    uint16
	txErr  error
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.txErr != nil {
		return f.txErr
	}
	if len(w) > 0 {
		cp := make([]byte, len(w))
		copy(cp, w)
		f.writes = append(f.writes, cp)
	}
	if len(r) > 0 {
		r[0] = byte(f.raw >> 8)
		r[1] = byte(f.raw)
	}
	return nil
}

func TestConfigure_SelectsContinuousHighRes(t *testing.T) {
	bus := &fakeI2C{}
	d := New(bus)
	if err := d.Configure(Config{FirstConvDelay: time.Microsecond}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if len(bus.writes) != 1 || len(bus.writes[0]) != 1 || bus.writes[0][0] != 0x10 {
		t.Fatalf("mode writes = %#v, want single 0x10", bus.writes)
	}
}

func TestRead_BigEndian(t *testing.T) {
	bus := &fakeI2C{raw: 0x1234}
	d := New(bus)
	raw, err := d.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if raw != 0x1234 {
		t.Fatalf("raw = %#x, want 0x1234", raw)
	}
	// No trigger write happens on read; the device free-runs.
	if len(bus.writes) != 0 {
		t.Fatalf("unexpected writes on read: %#v", bus.writes)
	}
}

func TestRead_TxFailure(t *testing.T) {
	bus := &fakeI2C{txErr: errors.New("nack")}
	d := New(bus)
	if _, err := d.Read(); !errors.Is(err, ErrTx) {
		t.Fatalf("expected ErrTx, got %v", err)
	}
}

func TestLux_Conversion(t *testing.T) {
	if got := Lux(120); got != 100.0 {
		t.Fatalf("Lux(120) = %v, want 100.0", got)
	}
	if got := Lux(0); got != 0.0 {
		t.Fatalf("Lux(0) = %v, want 0.0", got)
	}
}

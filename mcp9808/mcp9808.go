// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9808

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the address with A0-A2 tied low. Strapping the
	// address pins selects 0x18 through 0x1f.
	DefaultAddress uint16 = 0x18

	manufacturerID   uint16 = 0x0054
	deviceIDHighByte byte   = 0x04
)

// Opts holds the configuration options.
type Opts struct {
	Addr uint16
}

// DefaultOpts are the recommended default options.
var DefaultOpts = Opts{
	Addr: DefaultAddress,
}

// DeviceIdentity is the pair of ID registers read when the device is opened.
type DeviceIdentity struct {
	ManufacturerID uint16
	// DeviceID holds the device ID in the high byte and the silicon revision
	// in the low byte.
	DeviceID uint16
}

// Revision returns the silicon revision.
func (id DeviceIdentity) Revision() byte {
	return byte(id.DeviceID)
}

// Valid reports whether the IDs belong to an MCP9808. The revision is not
// checked.
func (id DeviceIdentity) Valid() bool {
	return id.ManufacturerID == manufacturerID && byte(id.DeviceID>>8) == deviceIDHighByte
}

// Limit selects one of the three comparator limit registers.
type Limit byte

const (
	Upper Limit = iota
	Lower
	Critical
)

func (l Limit) register() register {
	switch l {
	case Lower:
		return regLowerLimit
	case Critical:
		return regCriticalLimit
	default:
		return regUpperLimit
	}
}

func (l Limit) String() string {
	switch l {
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	case Critical:
		return "critical"
	}
	return fmt.Sprintf("Limit(%d)", byte(l))
}

// Limits holds the values of the three limit registers.
type Limits struct {
	Upper    physic.Temperature
	Lower    physic.Temperature
	Critical physic.Temperature
}

// Ambient is a single read of the ambient temperature register: the
// temperature and the alarm flags that were latched alongside it.
type Ambient struct {
	Temperature physic.Temperature
	Alarms      AlarmFlags
}

// Dev is a handle to an initialized MCP9808 device.
//
// Every method performs its bus transactions while holding the handle's lock,
// so the write of a register pointer and the read of its content are never
// split by another call on the same handle.
type Dev struct {
	d   *i2c.Dev
	mu  sync.Mutex
	buf [3]byte
	id  DeviceIdentity
}

// New opens a handle to an MCP9808 sensor.
//
// The manufacturer and device ID registers are checked before anything else is
// done. If they do not match an MCP9808, or the device does not answer, an
// *IdentityError is returned.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: opts.Addr}}
	if err := d.probe(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) probe() error {
	m, err := d.readWord(regManufacturerID)
	if err != nil {
		return &IdentityError{Addr: d.d.Addr, Err: err}
	}
	dev, err := d.readWord(regDeviceID)
	if err != nil {
		return &IdentityError{Addr: d.d.Addr, Err: err}
	}
	d.id = DeviceIdentity{
		ManufacturerID: uint16(m[0])<<8 | uint16(m[1]),
		DeviceID:       uint16(dev[0])<<8 | uint16(dev[1]),
	}
	if !d.id.Valid() {
		return &IdentityError{Addr: d.d.Addr, Identity: d.id}
	}
	return nil
}

// Identity returns the IDs read when the handle was opened.
func (d *Dev) Identity() DeviceIdentity {
	return d.id
}

// SenseTemp reads the ambient temperature.
func (d *Dev) SenseTemp() (physic.Temperature, error) {
	a, err := d.SenseAmbient()
	return a.Temperature, err
}

// SenseAlarms reads the ambient temperature register and returns only its
// alarm flags. Use SenseAmbient when both the temperature and the flags are
// needed, as two separate calls may straddle a conversion.
func (d *Dev) SenseAlarms() (AlarmFlags, error) {
	a, err := d.SenseAmbient()
	return a.Alarms, err
}

// SenseAmbient reads the ambient temperature register once and decodes both
// the temperature and the alarm flags from it.
func (d *Dev) SenseAmbient() (Ambient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.readWord(regAmbient)
	if err != nil {
		return Ambient{}, fmt.Errorf("mcp9808: read temperature: %w", err)
	}
	return Ambient{Temperature: decodeTemperature(b), Alarms: decodeAlarms(b[0])}, nil
}

// Limit returns the current value of a limit register.
func (d *Dev) Limit(l Limit) (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.readWord(l.register())
	if err != nil {
		return 0, fmt.Errorf("mcp9808: read %s limit: %w", l, err)
	}
	return decodeTemperature(b), nil
}

// SetLimit writes a limit register. The register holds 0.25°C steps, so t is
// truncated towards zero to a quarter degree. Negative limits are written as
// sign and magnitude. Limits beyond ±255.75°C are not rejected and wrap
// around.
func (d *Dev) SetLimit(l Limit, t physic.Temperature) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = encodeLimit(t, l.register())
	if err := d.d.Tx(d.buf[:], nil); err != nil {
		return fmt.Errorf("mcp9808: write %s limit: %w", l, err)
	}
	return nil
}

// Limits reads the three limit registers.
func (d *Dev) Limits() (Limits, error) {
	var l Limits
	var err error
	if l.Upper, err = d.Limit(Upper); err != nil {
		return Limits{}, err
	}
	if l.Lower, err = d.Limit(Lower); err != nil {
		return Limits{}, err
	}
	if l.Critical, err = d.Limit(Critical); err != nil {
		return Limits{}, err
	}
	return l, nil
}

// SetLimits writes the upper, lower and critical limits, in that order. It
// stops at the first failure.
func (d *Dev) SetLimits(upper, lower, critical physic.Temperature) error {
	if err := d.SetLimit(Upper, upper); err != nil {
		return err
	}
	if err := d.SetLimit(Lower, lower); err != nil {
		return err
	}
	return d.SetLimit(Critical, critical)
}

// Resolution returns the conversion resolution.
func (d *Dev) Resolution() (Resolution, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.readByte(regResolution)
	if err != nil {
		return 0, fmt.Errorf("mcp9808: read resolution: %w", err)
	}
	return decodeResolution(b), nil
}

// SetResolution changes the conversion resolution. The other bits of the
// register are read back and preserved.
func (d *Dev) SetResolution(r Resolution) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	current, err := d.readByte(regResolution)
	if err != nil {
		return fmt.Errorf("mcp9808: read resolution: %w", err)
	}
	d.buf[0] = byte(regResolution)
	d.buf[1] = encodeResolution(current, r)
	if err := d.d.Tx(d.buf[:2], nil); err != nil {
		return fmt.Errorf("mcp9808: write resolution: %w", err)
	}
	return nil
}

// Config returns the raw configuration register. Refer to the datasheet for
// interpretation.
func (d *Dev) Config() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.readWord(regConfiguration)
	if err != nil {
		return 0, fmt.Errorf("mcp9808: read configuration: %w", err)
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// Sense reads the temperature from the device and writes the value to the
// specified env variable.
func (d *Dev) Sense(env *physic.Env) error {
	t, err := d.SenseTemp()
	if err == nil {
		env.Temperature = t
	}
	return err
}

// Precision returns the step of the temperature register, 0.0625°C. The
// configured Resolution may make actual readings coarser.
func (d *Dev) Precision(env *physic.Env) {
	env.Temperature = _DEGREES_RESOLUTION
	env.Pressure = 0
	env.Humidity = 0
}

// Halt implements conn.Resource. The device runs no background work so there
// is nothing to stop.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("mcp9808: %s", d.d.String())
}

// readWord writes the register pointer and reads the two byte register
// content into the tail of the scratch buffer, in one transaction.
func (d *Dev) readWord(reg register) ([2]byte, error) {
	d.buf[0] = byte(reg)
	if err := d.d.Tx(d.buf[:1], d.buf[1:3]); err != nil {
		return [2]byte{}, err
	}
	return [2]byte{d.buf[1], d.buf[2]}, nil
}

func (d *Dev) readByte(reg register) (byte, error) {
	d.buf[0] = byte(reg)
	if err := d.d.Tx(d.buf[:1], d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

var _ conn.Resource = &Dev{}

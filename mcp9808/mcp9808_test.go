// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9808

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

const addr = DefaultAddress

var errBus = errors.New("bus fault")

// failBus fails every transaction after the first ok ones.
type failBus struct {
	i2ctest.Playback
	ok int
}

func (f *failBus) Tx(a uint16, w, r []byte) error {
	if f.ok == 0 {
		return errBus
	}
	f.ok--
	return f.Playback.Tx(a, w, r)
}

func identityOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: addr, W: []byte{byte(regManufacturerID)}, R: []byte{0x00, 0x54}},
		{Addr: addr, W: []byte{byte(regDeviceID)}, R: []byte{0x04, 0x00}},
	}
}

func newPlayback(ops ...i2ctest.IO) *i2ctest.Playback {
	return &i2ctest.Playback{Ops: append(identityOps(), ops...), DontPanic: true}
}

func closePlayback(t *testing.T, pb *i2ctest.Playback) {
	t.Helper()
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestNew(t *testing.T) {
	pb := newPlayback()
	defer closePlayback(t, pb)
	dev, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := DeviceIdentity{ManufacturerID: 0x0054, DeviceID: 0x0400}
	if diff := cmp.Diff(want, dev.Identity()); diff != "" {
		t.Errorf("identity mismatch (-want +got):\n%s", diff)
	}
	if s := dev.String(); len(s) == 0 {
		t.Error("invalid String() result")
	}
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
}

func TestNewAddress(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: 0x1a, W: []byte{byte(regManufacturerID)}, R: []byte{0x00, 0x54}},
		// The revision byte is ignored.
		{Addr: 0x1a, W: []byte{byte(regDeviceID)}, R: []byte{0x04, 0x03}},
	}, DontPanic: true}
	defer closePlayback(t, pb)
	dev, err := New(pb, &Opts{Addr: 0x1a})
	if err != nil {
		t.Fatal(err)
	}
	if r := dev.Identity().Revision(); r != 3 {
		t.Errorf("Revision() = %d, expected 3", r)
	}
}

func TestNewIdentityMismatch(t *testing.T) {
	tests := []struct {
		name   string
		manuf  []byte
		device []byte
	}{
		{"wrong manufacturer", []byte{0x00, 0x99}, []byte{0x04, 0x00}},
		{"wrong manufacturer and device", []byte{0x00, 0x99}, []byte{0x75, 0x00}},
		{"manufacturer high byte", []byte{0x01, 0x54}, []byte{0x04, 0x00}},
		{"wrong device", []byte{0x00, 0x54}, []byte{0x05, 0x00}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pb := &i2ctest.Playback{Ops: []i2ctest.IO{
				{Addr: addr, W: []byte{byte(regManufacturerID)}, R: test.manuf},
				{Addr: addr, W: []byte{byte(regDeviceID)}, R: test.device},
			}, DontPanic: true}
			defer closePlayback(t, pb)
			dev, err := New(pb, &DefaultOpts)
			if dev != nil {
				t.Error("handle returned for a foreign device")
			}
			var idErr *IdentityError
			if !errors.As(err, &idErr) {
				t.Fatalf("expected *IdentityError, got %v", err)
			}
			if idErr.Addr != addr {
				t.Errorf("error carries address 0x%02x, expected 0x%02x", idErr.Addr, addr)
			}
			if idErr.Err != nil {
				t.Errorf("unexpected bus error %v", idErr.Err)
			}
			t.Log(err)
		})
	}
}

func TestNewBusError(t *testing.T) {
	for ok := 0; ok < 2; ok++ {
		fb := &failBus{Playback: i2ctest.Playback{Ops: identityOps(), DontPanic: true}, ok: ok}
		_, err := New(fb, nil)
		var idErr *IdentityError
		if !errors.As(err, &idErr) {
			t.Fatalf("expected *IdentityError, got %v", err)
		}
		if !errors.Is(err, errBus) {
			t.Errorf("bus error not wrapped: %v", err)
		}
	}
}

func TestSenseAmbient(t *testing.T) {
	tests := []struct {
		bits     []byte
		expected Ambient
	}{
		{[]byte{0x01, 0x94}, Ambient{Temperature: celsius(25.25)}},
		{[]byte{0xc1, 0x94}, Ambient{Temperature: celsius(25.25), Alarms: AlarmFlags{AboveCritical: true, AboveUpper: true}}},
		{[]byte{0x3f, 0x60}, Ambient{Temperature: celsius(-10), Alarms: AlarmFlags{BelowLower: true}}},
	}
	var ops []i2ctest.IO
	for _, test := range tests {
		ops = append(ops, i2ctest.IO{Addr: addr, W: []byte{byte(regAmbient)}, R: test.bits})
	}
	pb := newPlayback(ops...)
	defer closePlayback(t, pb)
	record := &i2ctest.Record{Bus: pb}
	dev, err := New(record, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		got, err := dev.SenseAmbient()
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.expected, got); diff != "" {
			t.Errorf("SenseAmbient(%#v) mismatch (-want +got):\n%s", test.bits, diff)
		}
	}
	// One transaction per read, each writing only the register pointer.
	if n := len(record.Ops); n != 2+len(tests) {
		t.Errorf("recorded %d transactions, expected %d", n, 2+len(tests))
	}
}

func TestSenseTempAndAlarms(t *testing.T) {
	pb := newPlayback(
		i2ctest.IO{Addr: addr, W: []byte{byte(regAmbient)}, R: []byte{0x41, 0x00}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regAmbient)}, R: []byte{0x41, 0x00}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regAmbient)}, R: []byte{0x00, 0x08}},
	)
	defer closePlayback(t, pb)
	dev, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	temp, err := dev.SenseTemp()
	if err != nil {
		t.Fatal(err)
	}
	if temp != celsius(16) {
		t.Errorf("SenseTemp() = %s, expected 16°C", temp)
	}
	alarms, err := dev.SenseAlarms()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(AlarmFlags{AboveUpper: true}, alarms); diff != "" {
		t.Errorf("SenseAlarms() mismatch (-want +got):\n%s", diff)
	}
	env := physic.Env{}
	if err := dev.Sense(&env); err != nil {
		t.Fatal(err)
	}
	if env.Temperature != celsius(0.5) {
		t.Errorf("Sense() = %s, expected 0.5°C", env.Temperature)
	}
	dev.Precision(&env)
	if env.Temperature != 62_500*physic.MicroKelvin {
		t.Errorf("Precision() = %s", env.Temperature)
	}
}

func TestLimits(t *testing.T) {
	pb := newPlayback(
		i2ctest.IO{Addr: addr, W: []byte{byte(regUpperLimit), 0x01, 0x70}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regLowerLimit), 0x00, 0xa0}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regCriticalLimit), 0x06, 0x40}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regUpperLimit)}, R: []byte{0x01, 0x70}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regLowerLimit)}, R: []byte{0x00, 0xa0}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regCriticalLimit)}, R: []byte{0x06, 0x40}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regLowerLimit), 0x10, 0xa0}},
	)
	defer closePlayback(t, pb)
	dev, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.SetLimits(celsius(23), celsius(10), celsius(100)); err != nil {
		t.Fatal(err)
	}
	got, err := dev.Limits()
	if err != nil {
		t.Fatal(err)
	}
	want := Limits{Upper: celsius(23), Lower: celsius(10), Critical: celsius(100)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Limits() mismatch (-want +got):\n%s", diff)
	}
	if err := dev.SetLimit(Lower, celsius(-10)); err != nil {
		t.Fatal(err)
	}
}

func TestLimitErrors(t *testing.T) {
	fb := &failBus{Playback: i2ctest.Playback{Ops: identityOps(), DontPanic: true}, ok: 2}
	dev, err := New(fb, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.SetLimits(celsius(30), celsius(20), celsius(40)); !errors.Is(err, errBus) {
		t.Errorf("SetLimits() error = %v, expected bus error", err)
	}
	if _, err := dev.Limits(); !errors.Is(err, errBus) {
		t.Errorf("Limit() error = %v, expected bus error", err)
	}
	if _, err := dev.SenseAmbient(); !errors.Is(err, errBus) {
		t.Errorf("SenseAmbient() error = %v, expected bus error", err)
	}
	if _, err := dev.Resolution(); !errors.Is(err, errBus) {
		t.Errorf("Resolution() error = %v, expected bus error", err)
	}
	if err := dev.SetResolution(ResolutionHalf); !errors.Is(err, errBus) {
		t.Errorf("SetResolution() error = %v, expected bus error", err)
	}
	if _, err := dev.Config(); !errors.Is(err, errBus) {
		t.Errorf("Config() error = %v, expected bus error", err)
	}
	var idErr *IdentityError
	if _, err := dev.SenseTemp(); errors.As(err, &idErr) {
		t.Error("accessor returned an identity error")
	}
}

func TestResolutionRegister(t *testing.T) {
	pb := newPlayback(
		i2ctest.IO{Addr: addr, W: []byte{byte(regResolution)}, R: []byte{0x03}},
		// Reserved bits set: they are written back untouched.
		i2ctest.IO{Addr: addr, W: []byte{byte(regResolution)}, R: []byte{0xa7}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regResolution), 0xa5}},
		i2ctest.IO{Addr: addr, W: []byte{byte(regResolution)}, R: []byte{0xa5}},
	)
	defer closePlayback(t, pb)
	dev, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	r, err := dev.Resolution()
	if err != nil {
		t.Fatal(err)
	}
	if r != ResolutionSixteenth {
		t.Errorf("Resolution() = %s, expected sixteenth", r)
	}
	if err := dev.SetResolution(ResolutionQuarter); err != nil {
		t.Fatal(err)
	}
	if r, err = dev.Resolution(); err != nil || r != ResolutionQuarter {
		t.Errorf("Resolution() = %s, %v, expected quarter", r, err)
	}
}

func TestConfig(t *testing.T) {
	pb := newPlayback(i2ctest.IO{Addr: addr, W: []byte{byte(regConfiguration)}, R: []byte{0x01, 0x08}})
	defer closePlayback(t, pb)
	dev, err := New(pb, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := dev.Config()
	if err != nil {
		t.Fatal(err)
	}
	if c != 0x0108 {
		t.Errorf("Config() = 0x%04x, expected 0x0108", c)
	}
}

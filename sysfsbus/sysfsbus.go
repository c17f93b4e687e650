// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sysfsbus exposes a Linux /dev/i2c-N character device opened through
// gobot's sysfs package as a periph i2c.Bus.
//
// It is an alternative to periph's own host drivers for systems where those
// are not available. A transaction is performed as a write followed by a
// read, without a repeated start. This is fine for devices that latch a
// register pointer, like the MCP9808, but not for devices that require a
// repeated start.
package sysfsbus

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"gobot.io/x/gobot/sysfs"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Device is the part of a gobot sysfs I2C device used by Bus.
type Device interface {
	io.ReadWriteCloser
	SetAddress(address int) error
}

// Bus is an i2c.Bus over a Device.
type Bus struct {
	mu   sync.Mutex
	dev  Device
	name string
	addr int
}

// Open opens the I2C character device at path, for example "/dev/i2c-1".
func Open(path string) (*Bus, error) {
	d, err := sysfs.NewI2cDevice(path)
	if err != nil {
		return nil, fmt.Errorf("sysfsbus: open %s: %w", path, err)
	}
	return New(d, path), nil
}

// New wraps an already opened device. name is returned by String.
func New(dev Device, name string) *Bus {
	return &Bus{dev: dev, name: name, addr: -1}
}

func (b *Bus) String() string {
	return "sysfs:" + b.name
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(addr) != b.addr {
		if err := b.dev.SetAddress(int(addr)); err != nil {
			return fmt.Errorf("sysfsbus: set address 0x%02x: %w", addr, err)
		}
		b.addr = int(addr)
	}
	if len(w) != 0 {
		n, err := b.dev.Write(w)
		if err != nil {
			return fmt.Errorf("sysfsbus: write: %w", err)
		}
		if n != len(w) {
			return fmt.Errorf("sysfsbus: short write %d/%d", n, len(w))
		}
	}
	if len(r) != 0 {
		if _, err := io.ReadFull(b.dev, r); err != nil {
			return fmt.Errorf("sysfsbus: read: %w", err)
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus. The bus speed of a character device is set by
// the kernel and cannot be changed from user space.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return errors.New("sysfsbus: changing the bus speed is not supported")
}

// Close closes the underlying device.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dev.Close()
}

var _ i2c.BusCloser = &Bus{}

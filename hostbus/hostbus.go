// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hostbus opens an I2C bus by name for the command line tools.
//
// Names prefixed with "sysfs:" are opened through gobot's sysfs driver, for
// example "sysfs:/dev/i2c-1". Any other name, including the empty string for
// the first available bus, is looked up in periph's i2creg registry after the
// host drivers are loaded.
package hostbus

import (
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/mcp9808/sysfsbus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// SysfsPrefix selects the gobot sysfs driver.
const SysfsPrefix = "sysfs:"

// Open opens the named bus.
func Open(name string) (i2c.BusCloser, error) {
	if path, ok := strings.CutPrefix(name, SysfsPrefix); ok {
		return sysfsbus.Open(path)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hostbus: failed to initialize periph: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("hostbus: %w", err)
	}
	return b, nil
}

// CheckAddr returns an error if addr cannot be an MCP9808 address. The
// address pins select 0x18 through 0x1f.
func CheckAddr(addr uint) error {
	if addr < 0x18 || addr > 0x1f {
		return fmt.Errorf("hostbus: address 0x%02x is outside 0x18-0x1f", addr)
	}
	return nil
}

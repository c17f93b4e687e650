// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9808

import "fmt"

// IdentityError is returned by New when the device at Addr could not be
// probed, or answered with IDs that do not belong to an MCP9808.
type IdentityError struct {
	Addr     uint16
	Identity DeviceIdentity
	// Err is the bus error that interrupted the probe, if any.
	Err error
}

func (e *IdentityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mcp9808: unable to find device at address 0x%02x: %v", e.Addr, e.Err)
	}
	return fmt.Sprintf("mcp9808: unable to find device at address 0x%02x: got manufacturer 0x%04x device 0x%04x",
		e.Addr, e.Identity.ManufacturerID, e.Identity.DeviceID)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

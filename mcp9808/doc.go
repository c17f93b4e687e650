// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// mcp9808 provides a package for interfacing a Microchip MCP9808 I2C
// temperature sensor.
//
// Range: -40°C - 125°C
//
// Accuracy: +/- 0.25°C typical
//
// Resolution: 0.0625°C (configurable down to 0.5°C)
//
// The device compares every conversion against three limits (upper, lower and
// critical) and reports the results as alarm flags in the upper bits of the
// temperature register. Limits hold 0.25°C steps.
//
// The handle checks the manufacturer and device ID registers when it is
// opened and refuses to talk to anything that is not an MCP9808.
//
// For detailed information, refer to the [datasheet].
//
// A command line example is available in cmd/mcp9808.
//
// [datasheet]: https://ww1.microchip.com/downloads/en/DeviceDoc/25095A.pdf
package mcp9808

// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp9808

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

type register byte

// Addresses of registers to read/write.
const (
	regConfiguration  register = 0x01
	regUpperLimit     register = 0x02
	regLowerLimit     register = 0x03
	regCriticalLimit  register = 0x04
	regAmbient        register = 0x05
	regManufacturerID register = 0x06
	regDeviceID       register = 0x07
	regResolution     register = 0x08
)

const (
	// Alarm bits in the high byte of the ambient temperature register.
	alarmCriticalBit byte = 1 << 7
	alarmUpperBit    byte = 1 << 6
	alarmLowerBit    byte = 1 << 5

	alarmMask byte = 0xe0
	signBit   byte = 0x10

	resolutionMask byte = 0x03

	// Counts per degree in the temperature registers.
	countsPerDegree = 16
	// Quarter degrees are the finest step the limit registers hold.
	quartersPerDegree = 4

	_DEGREES_RESOLUTION physic.Temperature = 62_500 * physic.MicroKelvin
	_LIMIT_RESOLUTION   physic.Temperature = 250 * physic.MilliKelvin

	// Negative readings are biased by this many degrees.
	_SIGN_BIAS physic.Temperature = 256 * physic.Kelvin
)

// AlarmFlags are the comparator results latched in the upper bits of the
// ambient temperature register. They are only as fresh as the read that
// returned them.
type AlarmFlags struct {
	AboveCritical bool
	AboveUpper    bool
	BelowLower    bool
}

// Any reports whether at least one flag is set.
func (a AlarmFlags) Any() bool {
	return a.AboveCritical || a.AboveUpper || a.BelowLower
}

func (a AlarmFlags) String() string {
	return fmt.Sprintf("critical=%t upper=%t lower=%t", a.AboveCritical, a.AboveUpper, a.BelowLower)
}

// Resolution is the ADC resolution of ambient temperature conversions.
type Resolution byte

const (
	// ResolutionHalf converts in 0.5°C steps.
	ResolutionHalf Resolution = iota
	ResolutionQuarter
	ResolutionEighth
	// ResolutionSixteenth converts in 0.0625°C steps. This is the power-on
	// default.
	ResolutionSixteenth
)

var resolutionNames = [...]string{"half", "quarter", "eighth", "sixteenth"}

var conversionTimes = [...]time.Duration{
	30 * time.Millisecond,
	65 * time.Millisecond,
	130 * time.Millisecond,
	250 * time.Millisecond,
}

func (r Resolution) String() string {
	if int(r) < len(resolutionNames) {
		return resolutionNames[r]
	}
	return fmt.Sprintf("Resolution(%d)", byte(r))
}

// ConversionTime returns the typical time the device takes to produce a new
// reading at this resolution. The driver does not wait for it; callers
// polling faster than this will see repeated values.
func (r Resolution) ConversionTime() time.Duration {
	return conversionTimes[r&Resolution(resolutionMask)]
}

// Step returns the temperature increment of a conversion.
func (r Resolution) Step() physic.Temperature {
	return 500 * physic.MilliKelvin >> (r & Resolution(resolutionMask))
}

// ParseResolution converts a name as returned by String() into a Resolution.
func ParseResolution(s string) (Resolution, error) {
	for i, n := range resolutionNames {
		if n == s {
			return Resolution(i), nil
		}
	}
	return 0, fmt.Errorf("mcp9808: unknown resolution %q", s)
}

// decodeAlarms extracts the comparator flags from the raw high byte of the
// ambient temperature register.
func decodeAlarms(b0 byte) AlarmFlags {
	return AlarmFlags{
		AboveCritical: b0&alarmCriticalBit != 0,
		AboveUpper:    b0&alarmUpperBit != 0,
		BelowLower:    b0&alarmLowerBit != 0,
	}
}

// decodeTemperature converts a raw temperature word into a temperature. The
// alarm bits are ignored. When the sign bit is set the 12 bit magnitude is
// offset by -256°C, which is the datasheet's conversion.
func decodeTemperature(b [2]byte) physic.Temperature {
	b0 := b[0] &^ alarmMask
	count := physic.Temperature(b0&0x0f)<<8 | physic.Temperature(b[1])
	t := physic.ZeroCelsius + count*_DEGREES_RESOLUTION
	if b0&signBit != 0 {
		t -= _SIGN_BIAS
	}
	return t
}

// encodeTemperature is the inverse of decodeTemperature for temperatures
// between -256°C and 255.9375°C. Values are rounded down to a multiple of
// 1/16°C.
func encodeTemperature(t physic.Temperature) [2]byte {
	c := t - physic.ZeroCelsius
	var sign byte
	if c < 0 {
		c += _SIGN_BIAS
		sign = signBit
	}
	count := uint16(c / _DEGREES_RESOLUTION)
	return [2]byte{byte(count>>8)&0x0f | sign, byte(count)}
}

// encodeLimit builds the three byte write of a limit register. The magnitude
// is truncated to 0.25°C and the sign carried in bit 4 of the high byte.
// Values beyond the 8 bit integer range silently wrap.
func encodeLimit(t physic.Temperature, reg register) [3]byte {
	c := t - physic.ZeroCelsius
	negative := c < 0
	if negative {
		c = -c
	}
	quarters := uint16(c / _LIMIT_RESOLUTION)
	whole := quarters / quartersPerDegree
	frac := quarters % quartersPerDegree

	w := [3]byte{byte(reg), byte(whole>>4) & 0x0f, byte(whole&0x0f)<<4 | byte(frac)<<2}
	if negative {
		w[1] |= signBit
	}
	return w
}

// decodeResolution returns the resolution held in the low two bits.
func decodeResolution(b byte) Resolution {
	return Resolution(b & resolutionMask)
}

// encodeResolution returns current with its resolution field replaced,
// leaving the reserved bits alone.
func encodeResolution(current byte, r Resolution) byte {
	return current&^resolutionMask | byte(r)&resolutionMask
}

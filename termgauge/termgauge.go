// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termgauge draws a temperature reading as a one line bar graph on
// the terminal using ANSI color codes.
//
// The bar spans a fixed temperature range. Cells up to the current reading
// are lit, colored by the comparator zone they fall in: below the lower limit,
// within the window, above the upper limit and above the critical limit.
package termgauge

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/mcp9808/mcp9808"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for the gauge.
type Opts struct {
	// Width is the number of cells in the bar.
	Width int
	// Min and Max are the temperatures at either end of the bar.
	Min physic.Temperature
	Max physic.Temperature

	Palette *ansi256.Palette
	// W defaults to a colorable stdout.
	W io.Writer
}

// DefaultOpts spans -20°C to 60°C over 40 cells.
var DefaultOpts = Opts{
	Width: 40,
	Min:   physic.ZeroCelsius - 20*physic.Kelvin,
	Max:   physic.ZeroCelsius + 60*physic.Kelvin,
}

var (
	colorCold     = color.NRGBA{0x20, 0x60, 0xff, 0xff}
	colorOK       = color.NRGBA{0x20, 0xc0, 0x40, 0xff}
	colorWarm     = color.NRGBA{0xff, 0xa0, 0x00, 0xff}
	colorCritical = color.NRGBA{0xff, 0x10, 0x10, 0xff}
	colorUnlit    = color.NRGBA{0x30, 0x30, 0x30, 0xff}
)

// Gauge renders readings to a terminal.
type Gauge struct {
	w       io.Writer
	min     physic.Temperature
	max     physic.Temperature
	palette ansi256.Palette

	cells []color.NRGBA
	buf   bytes.Buffer
}

// New returns a Gauge. A nil opts uses DefaultOpts.
func New(opts *Opts) (*Gauge, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width <= 0 {
		return nil, fmt.Errorf("termgauge: invalid width %d", opts.Width)
	}
	if opts.Max <= opts.Min {
		return nil, fmt.Errorf("termgauge: empty range %s - %s", opts.Min, opts.Max)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Gauge{
		w:       w,
		min:     opts.Min,
		max:     opts.Max,
		palette: *p,
		cells:   make([]color.NRGBA, opts.Width),
	}, nil
}

func (g *Gauge) String() string {
	return fmt.Sprintf("termgauge: %s - %s", g.min, g.max)
}

// Halt resets the terminal attributes and ends the line.
func (g *Gauge) Halt() error {
	_, err := g.w.Write([]byte("\n\033[0m"))
	return err
}

// Show redraws the bar in place for reading a.
func (g *Gauge) Show(a mcp9808.Ambient, l mcp9808.Limits) error {
	g.fill(a.Temperature, l)
	g.buf.Reset()
	_, _ = g.buf.WriteString("\r\033[0m")
	for _, c := range g.cells {
		_, _ = io.WriteString(&g.buf, g.palette.Block(c))
	}
	_, _ = fmt.Fprintf(&g.buf, "\033[0m %s", a.Temperature)
	if a.Alarms.Any() {
		_, _ = fmt.Fprintf(&g.buf, " [%s]", alarmText(a.Alarms))
	}
	// Clear whatever is left from a longer previous line.
	_, _ = g.buf.WriteString("\033[K")
	_, err := g.buf.WriteTo(g.w)
	return err
}

// fill computes the cell colors. A cell is lit when the temperature at its
// center is at or below t.
func (g *Gauge) fill(t physic.Temperature, l mcp9808.Limits) {
	span := g.max - g.min
	n := physic.Temperature(len(g.cells))
	for i := range g.cells {
		center := g.min + span*(2*physic.Temperature(i)+1)/(2*n)
		if center > t {
			g.cells[i] = colorUnlit
			continue
		}
		g.cells[i] = zoneColor(center, l)
	}
}

func zoneColor(t physic.Temperature, l mcp9808.Limits) color.NRGBA {
	switch {
	case t >= l.Critical:
		return colorCritical
	case t > l.Upper:
		return colorWarm
	case t < l.Lower:
		return colorCold
	}
	return colorOK
}

func alarmText(a mcp9808.AlarmFlags) string {
	switch {
	case a.AboveCritical:
		return "CRITICAL"
	case a.AboveUpper:
		return "HIGH"
	case a.BelowLower:
		return "LOW"
	}
	return ""
}

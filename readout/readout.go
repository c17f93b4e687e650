// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package readout renders a temperature reading and its comparator limits as
// an image, for saving to a file or drawing on any periph display.
package readout

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/mcp9808/mcp9808"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for rendering.
type Opts struct {
	Width  int
	Height int
	// FontSize is the size in points of the temperature. Limits are drawn at
	// a third of that size.
	FontSize float64
}

// DefaultOpts fits a 250x122 e-paper panel.
var DefaultOpts = Opts{
	Width:    250,
	Height:   122,
	FontSize: 40,
}

// Background colors, by alarm state.
var (
	BackgroundNormal   = color.White
	BackgroundLow      = color.RGBA{0xc0, 0xd8, 0xff, 0xff}
	BackgroundHigh     = color.RGBA{0xff, 0xe0, 0xa0, 0xff}
	BackgroundCritical = color.RGBA{0xff, 0x80, 0x80, 0xff}
)

// Renderer draws readings.
type Renderer struct {
	opts  Opts
	large font.Face
	small font.Face
}

// New parses the embedded Go Regular font and returns a Renderer.
func New(opts *Opts) (*Renderer, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FontSize <= 0 {
		return nil, fmt.Errorf("readout: invalid options %+v", *opts)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("readout: %w", err)
	}
	return &Renderer{
		opts:  *opts,
		large: truetype.NewFace(f, &truetype.Options{Size: opts.FontSize}),
		small: truetype.NewFace(f, &truetype.Options{Size: opts.FontSize / 3}),
	}, nil
}

// Render draws the reading. The background reflects the most severe alarm,
// the temperature is centered, the limits are listed along the bottom and a
// bar on the left shows where the temperature sits between the lower and the
// critical limit.
func (r *Renderer) Render(a mcp9808.Ambient, l mcp9808.Limits) image.Image {
	w, h := float64(r.opts.Width), float64(r.opts.Height)
	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetColor(background(a.Alarms))
	dc.Clear()

	padding := h / 16
	barWidth := w / 16
	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawRectangle(padding, padding, barWidth, h-2*padding)
	dc.Stroke()
	fill := fraction(a.Temperature, l.Lower, l.Critical)
	dc.DrawRectangle(padding, padding+(h-2*padding)*(1-fill), barWidth, (h-2*padding)*fill)
	dc.Fill()

	textX := (w + barWidth + padding) / 2
	dc.SetFontFace(r.large)
	dc.DrawStringAnchored(a.Temperature.String(), textX, h*2/5, 0.5, 0.5)

	dc.SetFontFace(r.small)
	limits := fmt.Sprintf("L %s  U %s  C %s", short(l.Lower), short(l.Upper), short(l.Critical))
	dc.DrawStringAnchored(limits, textX, h-2*padding, 0.5, 0)
	return dc.Image()
}

// WritePNG renders the reading and encodes it as PNG.
func (r *Renderer) WritePNG(w io.Writer, a mcp9808.Ambient, l mcp9808.Limits) error {
	dc := gg.NewContextForImage(r.Render(a, l))
	return dc.EncodePNG(w)
}

// Draw renders the reading to a display, scaled to the display bounds.
func (r *Renderer) Draw(d display.Drawer, a mcp9808.Ambient, l mcp9808.Limits) error {
	b := d.Bounds()
	if b.Dx() != r.opts.Width || b.Dy() != r.opts.Height {
		o := r.opts
		o.Width, o.Height = b.Dx(), b.Dy()
		o.FontSize = r.opts.FontSize * float64(b.Dy()) / float64(r.opts.Height)
		nr, err := New(&o)
		if err != nil {
			return err
		}
		r = nr
	}
	return d.Draw(b, r.Render(a, l), image.Point{})
}

func background(a mcp9808.AlarmFlags) color.Color {
	switch {
	case a.AboveCritical:
		return BackgroundCritical
	case a.AboveUpper:
		return BackgroundHigh
	case a.BelowLower:
		return BackgroundLow
	}
	return BackgroundNormal
}

// fraction returns where t sits between lo and hi, clamped to [0, 1].
func fraction(t, lo, hi physic.Temperature) float64 {
	if hi <= lo {
		return 0
	}
	f := float64(t-lo) / float64(hi-lo)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// short formats a limit with the register's quarter degree precision.
func short(t physic.Temperature) string {
	return fmt.Sprintf("%.2f", t.Celsius())
}

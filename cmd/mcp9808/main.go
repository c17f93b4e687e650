// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// mcp9808 reads and configures an MCP9808 temperature sensor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/mcp9808/hostbus"
	"github.com/GermanBionicSystems/mcp9808/mcp9808"
	"github.com/GermanBionicSystems/mcp9808/readout"
	"github.com/GermanBionicSystems/mcp9808/termgauge"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306"
)

type command struct {
	help string
	run  func(bus i2c.Bus, dev *mcp9808.Dev, w io.Writer, args []string) error
}

var commands = map[string]command{
	"info":       {"print the device IDs and configuration register", runInfo},
	"read":       {"print the temperature and alarm flags", runRead},
	"limits":     {"print or set the upper, lower and critical limits", runLimits},
	"resolution": {"print or set the conversion resolution", runResolution},
	"watch":      {"show a live gauge of the temperature", runWatch},
	"render":     {"render the reading to a PNG file or an SSD1306 display", runRender},
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <command> [command flags]\n\nflags:\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(flag.CommandLine.Output(), "\ncommands:\n")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-11s %s\n", n, commands[n].help)
	}
}

func runInfo(bus i2c.Bus, dev *mcp9808.Dev, w io.Writer, args []string) error {
	id := dev.Identity()
	cfg, err := dev.Config()
	if err != nil {
		return err
	}
	res, err := dev.Resolution()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\nmanufacturer: 0x%04x\ndevice:       0x%02x revision %d\nconfig:       0x%04x\nresolution:   %s (%s per conversion)\n",
		dev, id.ManufacturerID, id.DeviceID>>8, id.Revision(), cfg, res, res.ConversionTime())
	return nil
}

func runRead(bus i2c.Bus, dev *mcp9808.Dev, w io.Writer, args []string) error {
	a, err := dev.SenseAmbient()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Temperature: %.4f C %.4f F\n", a.Temperature.Celsius(), a.Temperature.Fahrenheit())
	fmt.Fprintf(w, "Alarms: %s\n", a.Alarms)
	return nil
}

func runLimits(bus i2c.Bus, dev *mcp9808.Dev, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("limits", flag.ContinueOnError)
	fs.SetOutput(w)
	var upper, lower, critical physic.Temperature
	fs.Var(&upper, "upper", "upper limit, e.g. 23C")
	fs.Var(&lower, "lower", "lower limit, e.g. 10C")
	fs.Var(&critical, "critical", "critical limit, e.g. 100C")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := map[string]physic.Temperature{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = *f.Value.(*physic.Temperature)
	})
	for _, l := range []mcp9808.Limit{mcp9808.Upper, mcp9808.Lower, mcp9808.Critical} {
		if t, ok := set[l.String()]; ok {
			if err := dev.SetLimit(l, t); err != nil {
				return err
			}
		}
	}
	lim, err := dev.Limits()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Upper:    %s\nLower:    %s\nCritical: %s\n", lim.Upper, lim.Lower, lim.Critical)
	return nil
}

func runResolution(bus i2c.Bus, dev *mcp9808.Dev, w io.Writer, args []string) error {
	if len(args) > 1 {
		return errors.New("resolution takes at most one argument")
	}
	if len(args) == 1 {
		r, err := mcp9808.ParseResolution(args[0])
		if err != nil {
			return err
		}
		if err := dev.SetResolution(r); err != nil {
			return err
		}
	}
	r, err := dev.Resolution()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Resolution: %s (%g°C steps, %s per conversion)\n", r, float64(r.Step())/float64(physic.Celsius), r.ConversionTime())
	return nil
}

func runWatch(bus i2c.Bus, dev *mcp9808.Dev, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(w)
	interval := fs.Duration("interval", time.Second, "time between readings")
	count := fs.Int("n", 0, "number of readings, 0 to run until interrupted")
	width := fs.Int("width", termgauge.DefaultOpts.Width, "width of the gauge in cells")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := dev.Resolution()
	if err != nil {
		return err
	}
	if *interval < res.ConversionTime() {
		log.Printf("interval %s is shorter than the %s conversion time at %s resolution", *interval, res.ConversionTime(), res)
	}
	lim, err := dev.Limits()
	if err != nil {
		return err
	}
	opts := termgauge.DefaultOpts
	opts.Width = *width
	if w != os.Stdout {
		opts.W = w
	}
	g, err := termgauge.New(&opts)
	if err != nil {
		return err
	}
	defer g.Halt()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for i := 0; *count == 0 || i < *count; i++ {
		a, err := dev.SenseAmbient()
		if err != nil {
			return err
		}
		if err := g.Show(a, lim); err != nil {
			return err
		}
		if *count != 0 && i == *count-1 {
			break
		}
		select {
		case <-stop:
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func runRender(bus i2c.Bus, dev *mcp9808.Dev, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(w)
	out := fs.String("o", "mcp9808.png", "output PNG file")
	width := fs.Int("width", readout.DefaultOpts.Width, "image width")
	height := fs.Int("height", readout.DefaultOpts.Height, "image height")
	oled := fs.Bool("ssd1306", false, "draw on an SSD1306 display on the same bus instead of writing a file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts := readout.DefaultOpts
	opts.Width, opts.Height = *width, *height
	opts.FontSize = readout.DefaultOpts.FontSize * float64(*height) / float64(readout.DefaultOpts.Height)
	r, err := readout.New(&opts)
	if err != nil {
		return err
	}
	a, err := dev.SenseAmbient()
	if err != nil {
		return err
	}
	lim, err := dev.Limits()
	if err != nil {
		return err
	}
	if *oled {
		d, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
		if err != nil {
			return err
		}
		if err := r.Draw(d, a, lim); err != nil {
			return err
		}
		fmt.Fprintf(w, "Drew on %s\n", d)
		return nil
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := r.WritePNG(f, a, lim); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", *out)
	return nil
}

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use; prefix with \"sysfs:\" to use a /dev/i2c-N device directly")
	addr := flag.Uint("addr", uint(mcp9808.DefaultAddress), "I²C address of the device")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		return errors.New("no command given")
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		return fmt.Errorf("unknown command %q", flag.Arg(0))
	}
	if err := hostbus.CheckAddr(*addr); err != nil {
		return err
	}

	bus, err := hostbus.Open(*busName)
	if err != nil {
		return err
	}
	defer bus.Close()

	dev, err := mcp9808.New(bus, &mcp9808.Opts{Addr: uint16(*addr)})
	if err != nil {
		return err
	}
	return cmd.run(bus, dev, os.Stdout, flag.Args()[1:])
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp9808: %s.\n", err)
		os.Exit(1)
	}
}

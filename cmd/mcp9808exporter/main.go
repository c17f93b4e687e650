// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// mcp9808exporter samples an MCP9808 on a cron schedule, exports the readings
// to Prometheus and optionally publishes them over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/mcp9808/hostbus"
	"github.com/GermanBionicSystems/mcp9808/mcp9808"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cron "github.com/robfig/cron/v3"
)

// dotDir holds state that outlives the process, joined to the home
// directory.
const dotDir = ".mcp9808exporter"

const mqttTimeout = 10 * time.Second

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<title>{{.Device}}</title>
<h1>{{.Device}}</h1>
{{if .Valid}}<p>{{.Sample.Ambient.Temperature}} at {{.Sample.Time.Format "2006-01-02 15:04:05 MST"}}</p>
<p>Alarms: {{.Sample.Ambient.Alarms}}</p>
<p>Limits: upper {{.Sample.Limits.Upper}}, lower {{.Sample.Limits.Lower}}, critical {{.Sample.Limits.Critical}}</p>
{{else}}<p>No reading yet.</p>{{end}}
<p><a href="/metrics">Metrics</a></p>
`))

type indexHandler struct {
	device fmt.Stringer
	s      *sampler
}

func (h indexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	smp, ok := h.s.latest()
	data := struct {
		Device string
		Sample sample
		Valid  bool
	}{h.device.String(), smp, ok}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("Failed to render index: %v", err)
	}
}

func newMux(reg *prometheus.Registry, device fmt.Stringer, s *sampler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/", indexHandler{device: device, s: s})
	return mux
}

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use; prefix with \"sysfs:\" to use a /dev/i2c-N device directly")
	addr := flag.Uint("addr", uint(mcp9808.DefaultAddress), "I²C address of the device")
	listen := flag.String("listen", ":9121", "address to serve metrics on")
	cronSpec := flag.String("cronspec", "@every 10s", "cron spec that specifies when to take measurements")
	broker := flag.String("broker", "", "MQTT broker URL, e.g. tcp://localhost:1883; empty disables publishing")
	topic := flag.String("topic", "sensors/mcp9808", "MQTT topic to publish measurements to")
	clientID := flag.String("clientid", "mcp9808exporter", "MQTT client ID")
	dryrun := flag.Bool("dryrun", false, "log rather than publish measurements")
	flag.Parse()

	if flag.NArg() != 0 {
		return errors.New("unexpected argument")
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
	log.Printf("Found %s", dev)

	var publish func(sample) error
	switch {
	case *dryrun:
		publish = logSample
	case *broker != "":
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("failed to get home dir: %w", err)
		}
		storeDir := filepath.Join(home, dotDir, "mqtt_store")
		if err := os.MkdirAll(storeDir, 0700); err != nil {
			return err
		}
		client, err := mqttConnect(*broker, *clientID, storeDir, mqttTimeout)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		publish = (&publisher{client: client, topic: *topic, timeout: mqttTimeout}).publish
	}

	s := newSampler(dev, publish)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registerMetrics(reg, s)

	cr := cron.New()
	if _, err := cr.AddJob(*cronSpec, s); err != nil {
		return fmt.Errorf("invalid cronspec %q: %w", *cronSpec, err)
	}
	log.Printf("Starting cron scheduler with spec %q", *cronSpec)
	s.Run()
	cr.Start()
	defer func() { <-cr.Stop().Done() }()

	srv := &http.Server{Addr: *listen, Handler: newMux(reg, dev, s)}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	select {
	case err := <-errc:
		return err
	case <-c:
		log.Println("Cleaning up...")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp9808exporter: %s.\n", err)
		os.Exit(1)
	}
}

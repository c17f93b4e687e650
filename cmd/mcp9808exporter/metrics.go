// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"math"

	"github.com/GermanBionicSystems/mcp9808/mcp9808"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"periph.io/x/conn/v3/physic"
)

const (
	namespace = "sensors"
	subsystem = "mcp9808"
)

// registerMetrics exports the sampler's latest reading. Gauges read NaN until
// the first successful sample.
func registerMetrics(reg prometheus.Registerer, s *sampler) {
	f := promauto.With(reg)

	gauge := func(name, help string, labels prometheus.Labels, value func(sample) float64) {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 {
			smp, ok := s.latest()
			if !ok {
				return math.NaN()
			}
			return value(smp)
		})
	}

	gauge("temperature_celsius", "Ambient temperature.", nil, func(smp sample) float64 {
		return round(smp.Ambient.Temperature.Celsius(), 4)
	})
	for _, l := range []mcp9808.Limit{mcp9808.Upper, mcp9808.Lower, mcp9808.Critical} {
		l := l
		gauge("limit_celsius", "Comparator limit.", prometheus.Labels{"limit": l.String()}, func(smp sample) float64 {
			return round(limitOf(smp.Limits, l).Celsius(), 2)
		})
	}
	alarms := map[string]func(mcp9808.AlarmFlags) bool{
		"critical": func(a mcp9808.AlarmFlags) bool { return a.AboveCritical },
		"upper":    func(a mcp9808.AlarmFlags) bool { return a.AboveUpper },
		"lower":    func(a mcp9808.AlarmFlags) bool { return a.BelowLower },
	}
	for name, set := range alarms {
		name, set := name, set
		gauge("alarm", "Comparator alarm flag, 1 when set.", prometheus.Labels{"alarm": name}, func(smp sample) float64 {
			if set(smp.Ambient.Alarms) {
				return 1
			}
			return 0
		})
	}
	gauge("last_sample_timestamp_seconds", "Time of the last successful reading.", nil, func(smp sample) float64 {
		return float64(smp.Time.UnixNano()) / 1e9
	})

	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "read_errors_total",
		Help:      "Failed readings.",
	}, func() float64 {
		r, _ := s.errorCounts()
		return float64(r)
	})
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "publish_errors_total",
		Help:      "Readings that could not be published over MQTT.",
	}, func() float64 {
		_, p := s.errorCounts()
		return float64(p)
	})
}

func limitOf(l mcp9808.Limits, which mcp9808.Limit) physic.Temperature {
	switch which {
	case mcp9808.Lower:
		return l.Lower
	case mcp9808.Critical:
		return l.Critical
	}
	return l.Upper
}

func round(x float64, prec int) float64 {
	pow := math.Pow10(prec)
	return math.Round(x*pow) / pow
}

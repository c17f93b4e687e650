// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/GermanBionicSystems/mcp9808/mcp9808"
)

// sensor is the part of *mcp9808.Dev the sampler uses.
type sensor interface {
	SenseAmbient() (mcp9808.Ambient, error)
	Limits() (mcp9808.Limits, error)
}

// sample is one reading with the limits in force when it was taken.
type sample struct {
	Time    time.Time
	Ambient mcp9808.Ambient
	Limits  mcp9808.Limits
}

// sampler takes a reading each time it is run and keeps the latest one for
// the metrics and the index page. It implements cron.Job.
type sampler struct {
	sensor  sensor
	publish func(sample) error
	now     func() time.Time

	mu            sync.Mutex
	last          sample
	valid         bool
	readErrors    uint64
	publishErrors uint64
}

func newSampler(s sensor, publish func(sample) error) *sampler {
	return &sampler{sensor: s, publish: publish, now: time.Now}
}

func (s *sampler) Run() {
	if err := s.sample(); err != nil {
		log.Print(err)
	}
}

func (s *sampler) sample() error {
	smp, err := s.read()
	s.mu.Lock()
	if err != nil {
		s.readErrors++
	} else {
		s.last, s.valid = smp, true
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to take measurement: %w", err)
	}
	if s.publish == nil {
		return nil
	}
	if err := s.publish(smp); err != nil {
		s.mu.Lock()
		s.publishErrors++
		s.mu.Unlock()
		return fmt.Errorf("failed to publish measurement: %w", err)
	}
	return nil
}

func (s *sampler) read() (sample, error) {
	a, err := s.sensor.SenseAmbient()
	if err != nil {
		return sample{}, err
	}
	l, err := s.sensor.Limits()
	if err != nil {
		return sample{}, err
	}
	return sample{Time: s.now().UTC(), Ambient: a, Limits: l}, nil
}

// latest returns the last successful sample, if any.
func (s *sampler) latest() (sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.valid
}

func (s *sampler) errorCounts() (read, publish uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErrors, s.publishErrors
}

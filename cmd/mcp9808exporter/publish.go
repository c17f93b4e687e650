// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// payload is the JSON document published for each sample.
type payload struct {
	Time       time.Time `json:"time"`
	Celsius    float64   `json:"celsius"`
	Fahrenheit float64   `json:"fahrenheit"`
	Alarms     struct {
		Critical bool `json:"critical"`
		Upper    bool `json:"upper"`
		Lower    bool `json:"lower"`
	} `json:"alarms"`
	Limits struct {
		Upper    float64 `json:"upper"`
		Lower    float64 `json:"lower"`
		Critical float64 `json:"critical"`
	} `json:"limits"`
}

func newPayload(s sample) *payload {
	p := &payload{
		Time:       s.Time,
		Celsius:    round(s.Ambient.Temperature.Celsius(), 4),
		Fahrenheit: round(s.Ambient.Temperature.Fahrenheit(), 4),
	}
	p.Alarms.Critical = s.Ambient.Alarms.AboveCritical
	p.Alarms.Upper = s.Ambient.Alarms.AboveUpper
	p.Alarms.Lower = s.Ambient.Alarms.BelowLower
	p.Limits.Upper = round(s.Limits.Upper.Celsius(), 2)
	p.Limits.Lower = round(s.Limits.Lower.Celsius(), 2)
	p.Limits.Critical = round(s.Limits.Critical.Celsius(), 2)
	return p
}

// publisher sends samples to an MQTT topic.
type publisher struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

func (p *publisher) publish(s sample) error {
	b, err := json.Marshal(newPayload(s))
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 1, false, b)
	if ok := token.WaitTimeout(p.timeout); !ok {
		return fmt.Errorf("publish timed out after %v", p.timeout)
	} else if token.Error() != nil {
		return fmt.Errorf("failed to publish: %w", token.Error())
	}
	return nil
}

// logSample prints the payload instead of publishing it.
func logSample(s sample) error {
	b, err := json.Marshal(newPayload(s))
	if err != nil {
		return err
	}
	log.Printf("%s", b)
	return nil
}

// mqttConnect connects to broker. Messages that cannot be delivered are kept
// in storeDir and resent once the connection is back.
func mqttConnect(broker, clientID, storeDir string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetStore(mqtt.NewFileStore(storeDir)).
		SetAutoReconnect(true).
		SetCleanSession(false)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if ok := token.WaitTimeout(timeout); !ok {
		return nil, fmt.Errorf("MQTT connection to %s timed out after %v", broker, timeout)
	} else if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, token.Error())
	}
	return client, nil
}

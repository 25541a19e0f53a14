// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package publish

import (
	"fmt"
	"time"

	"github.com/Thermoquad/tirestat/pkg/tpms"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MQTTConfig holds broker settings
type MQTTConfig struct {
	Broker   string
	Username string
	Password string
	Prefix   string
	QoS      byte
	Retain   bool
}

// RealPublisher publishes to an actual MQTT broker
type RealPublisher struct {
	client paho.Client
	config MQTTConfig
	logger zerolog.Logger
}

// ClientID returns a unique client identifier
func ClientID() string {
	return "tirestat-" + uuid.New().String()[:8]
}

// NewRealPublisher connects to the configured broker
func NewRealPublisher(config MQTTConfig, logger zerolog.Logger) (*RealPublisher, error) {
	if config.QoS > 2 {
		return nil, fmt.Errorf("invalid QoS %d", config.QoS)
	}

	opts := paho.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(ClientID()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(60 * time.Second)

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	opts.SetOnConnectHandler(func(paho.Client) {
		logger.Info().Str("broker", config.Broker).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn().Err(err).Msg("mqtt connection lost")
	})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{client: client, config: config, logger: logger}, nil
}

// Publish sends a reading to its topic
func (p *RealPublisher) Publish(r *tpms.Reading) error {
	payload, err := FormatPayload(r)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	token := p.client.Publish(Topic(p.config.Prefix, r), p.config.QoS, p.config.Retain, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the client currently has a broker connection
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker
func (p *RealPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

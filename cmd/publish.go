// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/tirestat/pkg/edge"
	"github.com/Thermoquad/tirestat/pkg/publish"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/spf13/cobra"
)

var (
	publishBroker  string
	publishPrefix  string
	publishMetrics string
	publishRepeat  time.Duration
	reconnect      bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Forward readings to MQTT and serve Prometheus metrics",
	Long: `Decode readings and publish each one as JSON to an MQTT broker under
<prefix>/<protocol>/<id>, while serving receiver metrics on /metrics.

The broker password is read from the TIRESTAT_MQTT_PASSWORD environment
variable when set, otherwise from the config file. Without a broker only
metrics are served.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishBroker, "broker", "", "MQTT broker URL, e.g. tcp://localhost:1883 (default from config)")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "", "MQTT topic prefix (default from config)")
	publishCmd.Flags().StringVar(&publishMetrics, "metrics", "", "Metrics listen address (default from config, \"off\" to disable)")
	publishCmd.Flags().DurationVar(&publishRepeat, "repeat", 2*time.Second, "Window in which identical frames are published once")
	publishCmd.Flags().BoolVar(&reconnect, "reconnect", true, "Reopen the bridge connection when it drops")
}

func runPublish(cmd *cobra.Command, args []string) error {
	mqttCfg := publish.MQTTConfig{
		Broker:   cfg.MQTT.Broker,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		Prefix:   cfg.MQTT.Prefix,
		QoS:      byte(cfg.MQTT.QoS),
		Retain:   cfg.MQTT.Retain,
	}
	if publishBroker != "" {
		mqttCfg.Broker = publishBroker
	}
	if publishPrefix != "" {
		mqttCfg.Prefix = publishPrefix
	}
	if pw := os.Getenv("TIRESTAT_MQTT_PASSWORD"); pw != "" {
		mqttCfg.Password = pw
	}

	metricsAddr := cfg.Metrics.Listen
	if publishMetrics != "" {
		metricsAddr = publishMetrics
	}

	src, connInfo, err := OpenSource()
	if err != nil {
		return err
	}
	sess, err := newSession(src)
	if err != nil {
		src.Close()
		return err
	}
	defer func() { sess.source.Close() }()

	var publisher publish.Publisher
	if mqttCfg.Broker != "" {
		client, err := publish.NewRealPublisher(mqttCfg, logger)
		if err != nil {
			return err
		}
		publisher = client
		defer publisher.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := publish.NewMetrics()
	if metricsAddr != "" && metricsAddr != "off" {
		go func() {
			if err := metrics.Serve(ctx, metricsAddr); err != nil {
				logger.Error().Err(err).Str("addr", metricsAddr).Msg("metrics server failed")
			}
		}()
	}

	// Sources that count overflowed transitions
	type dropCounter interface{ Dropped() uint64 }
	var dropped uint64

	filter := newRepeatFilter(publishRepeat)
	sess.OnEvent = func(ev edge.Event) {
		switch ev.Kind {
		case edge.KindEdges:
			metrics.AddEdges(len(ev.Edges))
		case edge.KindRSSI:
			metrics.SetRSSI(ev.RSSI)
		case edge.KindFrequency:
			metrics.SetFrequency(ev.Frequency)
		}

		if dc, ok := sess.source.(dropCounter); ok {
			n := dc.Dropped()
			if n < dropped {
				// new source after a reconnect
				dropped = 0
			}
			if n > dropped {
				metrics.AddDropped(int(n - dropped))
				dropped = n
			}
		}
	}
	sess.OnReading = func(_ tpms.Decoder, r *tpms.Reading, anomalies []tpms.ValidationError) {
		if !filter.fresh(r) {
			return
		}
		metrics.ObserveReading(r, anomalies)

		if publisher == nil {
			return
		}
		if err := publisher.Publish(r); err != nil {
			logger.Warn().Err(err).Str("topic", publish.Topic(mqttCfg.Prefix, r)).Msg("publish failed")
		}
	}

	fmt.Printf("Tirestat - Publish\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Receiver: %s\n", sess.preset)
	if publisher != nil {
		fmt.Printf("Broker: %s (prefix %s, QoS %d)\n", mqttCfg.Broker, mqttCfg.Prefix, mqttCfg.QoS)
	}
	if metricsAddr != "" && metricsAddr != "off" {
		fmt.Printf("Metrics: http://%s/metrics\n", metricsAddr)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	metrics.SetFrequency(sess.preset.Frequency)
	if reconnect {
		return sess.runSupervised(ctx, OpenSource)
	}
	return sess.run(ctx)
}

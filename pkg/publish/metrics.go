// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the receiver's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	readings     *prometheus.CounterVec
	anomalies    *prometheus.CounterVec
	edges        prometheus.Counter
	dropped      prometheus.Counter
	pressure     *prometheus.GaugeVec
	temperature  *prometheus.GaugeVec
	lastReceived *prometheus.GaugeVec
	rssi         prometheus.Gauge
	frequency    prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		readings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tpms_readings_total",
				Help: "Validated TPMS frames per protocol",
			},
			[]string{"protocol"},
		),
		anomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tpms_anomalies_total",
				Help: "Readings flagged by the plausibility checks",
			},
			[]string{"type"},
		),
		edges: factory.NewCounter(prometheus.CounterOpts{
			Name: "tpms_edges_total",
			Help: "Edges delivered to the decoders",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tpms_edges_dropped_total",
			Help: "Edges lost before reaching the decoders",
		}),
		pressure: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tpms_pressure_bar",
				Help: "Last reported tire pressure in bar",
			},
			[]string{"protocol", "id"},
		),
		temperature: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tpms_temperature_celsius",
				Help: "Last reported tire temperature",
			},
			[]string{"protocol", "id"},
		),
		lastReceived: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tpms_last_received_timestamp_seconds",
				Help: "Unix time of the last reading per sensor",
			},
			[]string{"protocol", "id"},
		),
		rssi: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tpms_rssi_dbm",
			Help: "Last RSSI reported by the receiver",
		}),
		frequency: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tpms_frequency_hz",
			Help: "Frequency the receiver is tuned to",
		}),
	}
}

// ObserveReading updates the per-protocol and per-sensor series
func (m *Metrics) ObserveReading(r *tpms.Reading, anomalies []tpms.ValidationError) {
	id := fmt.Sprintf("%08X", r.ID)

	m.readings.WithLabelValues(r.Protocol).Inc()
	m.pressure.WithLabelValues(r.Protocol, id).Set(r.Pressure)
	if r.TemperatureValid() {
		m.temperature.WithLabelValues(r.Protocol, id).Set(r.Temperature)
	}

	ts := r.Received
	if ts.IsZero() {
		ts = time.Now()
	}
	m.lastReceived.WithLabelValues(r.Protocol, id).Set(float64(ts.Unix()))

	for _, a := range anomalies {
		m.anomalies.WithLabelValues(anomalyLabel(a.Type)).Inc()
	}
}

// AddEdges counts delivered edges
func (m *Metrics) AddEdges(n int) {
	m.edges.Add(float64(n))
}

// AddDropped counts edges lost upstream of the decoders
func (m *Metrics) AddDropped(n int) {
	m.dropped.Add(float64(n))
}

// SetRSSI records the receiver RSSI
func (m *Metrics) SetRSSI(dbm float64) {
	m.rssi.Set(dbm)
}

// SetFrequency records the tuned frequency
func (m *Metrics) SetFrequency(hz uint32) {
	m.frequency.Set(float64(hz))
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func anomalyLabel(t tpms.AnomalyType) string {
	switch t {
	case tpms.AnomalyPressureRange:
		return "pressure_range"
	case tpms.AnomalyTemperatureRange:
		return "temperature_range"
	case tpms.AnomalyInvalidTemperature:
		return "invalid_temperature"
	case tpms.AnomalyBatteryLow:
		return "battery_low"
	case tpms.AnomalyIDZero:
		return "id_zero"
	default:
		return "unknown"
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/smart/cmd/smart/internal/loader"
)

// Metrics records per-trial timings in a private registry so a run can dump
// them with WriteTextfile without pulling in global collectors. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	searchMs     *prometheus.HistogramVec
	preprocessMs *prometheus.HistogramVec
	trials       *prometheus.CounterVec
	cells        *prometheus.CounterVec
}

// NewMetrics creates the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	buckets := prometheus.ExponentialBuckets(0.01, 2, 18)
	return &Metrics{
		registry: reg,
		searchMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smart",
			Name:      "trial_search_milliseconds",
			Help:      "Search time reported by the algorithm for one trial.",
			Buckets:   buckets,
		}, []string{"algorithm", "length"}),
		preprocessMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smart",
			Name:      "trial_preprocess_milliseconds",
			Help:      "Preprocessing time reported by the algorithm for one trial.",
			Buckets:   buckets,
		}, []string{"algorithm", "length"}),
		trials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart",
			Name:      "trials_total",
			Help:      "Search calls made, by algorithm.",
		}, []string{"algorithm"}),
		cells: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart",
			Name:      "cells_total",
			Help:      "Completed (algorithm, length) cells by status.",
		}, []string{"status"}),
	}
}

// ObserveTrial records one accepted trial.
func (m *Metrics) ObserveTrial(algo string, length int, t loader.Timing) {
	if m == nil {
		return
	}
	l := strconv.Itoa(length)
	m.searchMs.WithLabelValues(algo, l).Observe(t.SearchMs)
	m.preprocessMs.WithLabelValues(algo, l).Observe(t.PreprocessMs)
}

// CountTrial counts one search call whatever its outcome.
func (m *Metrics) CountTrial(algo string) {
	if m == nil {
		return
	}
	m.trials.WithLabelValues(algo).Inc()
}

// ObserveCell counts a finished cell.
func (m *Metrics) ObserveCell(r Result) {
	if m == nil {
		return
	}
	m.cells.WithLabelValues(r.Status.String()).Inc()
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

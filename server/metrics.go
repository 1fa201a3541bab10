// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package server

import (
	"context"
	"time"

	"github.com/derat/cancer/rates"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricRequestsCount counts the number of requests we served.
	metricRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_requests_count",
		Help: "Total number of processed requests",
	}, []string{"route", "code"})

	// metricRequestDurationSeconds summarizes how long requests took.
	metricRequestDurationSeconds = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "dashboard_request_duration_seconds",
		Help:       "Summarizes the time to handle a request (in seconds)",
		Objectives: map[float64]float64{0.5: 0.01, 0.9: 0.01, 0.99: 0.001},
	}, []string{"route"})

	// metricLoadDurationSeconds summarizes how long it took to build the table.
	metricLoadDurationSeconds = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "dashboard_load_duration_seconds",
		Help:       "Summarizes the time to fetch sources and build the table (in seconds)",
		Objectives: map[float64]float64{0.5: 0.01, 0.9: 0.01, 0.99: 0.001},
	}, []string{"result"})

	// metricTableRecords gauges the size of the loaded mortality table.
	metricTableRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_table_records",
		Help: "Number of records in the mortality table",
	})
)

// InstrumentLoad wraps load to record its duration and the size of the table it returns.
func InstrumentLoad(load func(context.Context) (*rates.Table, error)) func(context.Context) (*rates.Table, error) {
	return func(ctx context.Context) (*rates.Table, error) {
		start := time.Now()
		t, err := load(ctx)
		result := "ok"
		if err != nil {
			result = "error"
		} else {
			metricTableRecords.Set(float64(t.Len()))
		}
		metricLoadDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
		return t, err
	}
}

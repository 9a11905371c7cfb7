// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for xmlencd, named and shaped after the
// guided-traffic-s3-encryption-proxy pattern of a request counter plus a
// duration histogram per operation.
var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmlencd_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status_code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xmlencd_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	encryptOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xmlencd_encrypt_operations_total",
			Help: "Total number of encrypt/decrypt operations",
		},
		[]string{"operation", "method", "status"},
	)
)

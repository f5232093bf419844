// Package metrics defines and registers all custom Prometheus metrics for the
// FSRP document portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry through promauto at package
// init; /metrics serves them via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateAttemptsTotal counts passcode submissions.
// Labels:
//   - scope: "site", "trainer" or "staff"
//   - result: "granted" or "rejected"
var GateAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_attempts_total",
		Help:      "Total number of passcode gate submissions, by scope and result.",
	},
	[]string{"scope", "result"},
)

// AccessRedirectsTotal counts page requests sent back to a gate.
// Label:
//   - scope: the first scope that failed
var AccessRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_redirects_total",
		Help:      "Total number of protected page requests redirected to a gate page.",
	},
	[]string{"scope"},
)

// ── Discord metrics ───────────────────────────────────────────────────────────

// DiscordLoginsTotal counts completed callbacks.
// Label:
//   - result: "ok" or the callback error code (e.g. "no_token", "access_denied")
var DiscordLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discord_logins_total",
		Help:      "Total number of Discord login callbacks, by result.",
	},
	[]string{"result"},
)

// DiscordCallbackDuration measures the callback step including verification.
var DiscordCallbackDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "discord_callback_duration_seconds",
		Help:      "Duration of the Discord callback step, verification included.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// StorageErrorsTotal counts failed storage backend operations.
// Label:
//   - op: "load" or "save"
var StorageErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_errors_total",
		Help:      "Total number of storage backend failures, by operation.",
	},
	[]string{"op"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request handling time.
// Labels:
//   - method: HTTP method
//   - route: the matched echo route, or "static"
//   - code: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "code"},
)

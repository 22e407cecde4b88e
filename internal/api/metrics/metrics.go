// Package metrics defines all custom Prometheus metrics for the gradebook
// API. It is the single source of truth for metric names, labels, and help
// strings; registration happens via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gradebook"

// LoginsTotal counts authentication attempts.
// Label:
//   - result: "success", "invalid_credentials" or "locked"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GradeWritesTotal counts single-grade upsert requests.
// Label:
//   - outcome: "ok" or "rejected"
var GradeWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grade_writes_total",
		Help:      "Total number of grade upsert requests, by outcome.",
	},
	[]string{"outcome"},
)

// GradesPublishedTotal counts grades covered by publish operations,
// already-published rows included.
var GradesPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grades_published_total",
		Help:      "Total number of grades covered by publish operations.",
	},
)

// ImportRowsTotal counts bulk import rows.
// Label:
//   - result: "processed" or "rejected"
var ImportRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Total number of bulk import rows, by result.",
	},
	[]string{"result"},
)

// ExportsTotal counts CSV exports.
// Label:
//   - scope: "teacher" or "principal"
var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of CSV exports, by scope.",
	},
	[]string{"scope"},
)

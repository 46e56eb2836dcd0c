// Package metrics defines and registers the custom Prometheus metrics of the
// expense tracker. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics register themselves with the default registry through promauto on
// package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expense_tracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid" (bad input) or "rejected" (bad credentials)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts accounts created.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user accounts registered.",
	},
)

// ── Expense metrics ───────────────────────────────────────────────────────────

// ExpensesCreatedTotal counts expenses written.
// Label:
//   - replayed: "true" when an Idempotency-Key matched an existing expense
var ExpensesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expenses_created_total",
		Help:      "Total number of expense create requests that succeeded.",
	},
	[]string{"replayed"},
)

var ExpensesUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expenses_updated_total",
		Help:      "Total number of expenses updated.",
	},
)

var ExpensesDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expenses_deleted_total",
		Help:      "Total number of expenses deleted.",
	},
)

// ── Category metrics ──────────────────────────────────────────────────────────

var CategoriesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "categories_created_total",
		Help:      "Total number of categories created.",
	},
)

// CSVExportsTotal counts CSV exports served.
var CSVExportsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "csv_exports_total",
		Help:      "Total number of CSV exports generated.",
	},
)

// Package metrics holds the prometheus collectors of the bridge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChainTip tracks the latest tip reported by the event source
	ChainTip = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_monitor_chain_tip",
			Help: "Latest tip height reported by the chain",
		},
		[]string{"monitor"},
	)

	// SafeFrontier tracks tip minus the confirmation margin
	SafeFrontier = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_monitor_safe_frontier",
			Help: "Highest height considered irreversible",
		},
		[]string{"monitor"},
	)

	// Cursor tracks the last persisted height per monitor
	Cursor = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_monitor_cursor",
			Help: "Last height fully dispatched and persisted",
		},
		[]string{"monitor"},
	)

	EventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_monitor_events_dispatched_total",
			Help: "Total number of events handed to all observers",
		},
		[]string{"monitor"},
	)

	// MonitorErrors counts failed iterations by the phase that failed
	MonitorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_monitor_errors_total",
			Help: "Total number of failed monitor iterations",
		},
		[]string{"monitor", "phase"},
	)

	Settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_settlements_total",
			Help: "Total number of settlements issued on the opposite chain",
		},
		[]string{"observer", "kind"},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_notification_failures_total",
			Help: "Total number of notifications that could not be delivered",
		},
		[]string{"sink"},
	)
)

package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/assetbot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assetbot"

// Metrics holds the collectors fed by the engine hooks.
type Metrics struct {
	registry *prometheus.Registry

	NodeVisits      *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	InventoryCalls  *prometheus.CounterVec
	InventoryTiming *prometheus.HistogramVec
}

// NewMetrics registers the collectors, plus Go and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_visits_total",
				Help:      "Total number of dialogue node visits.",
			},
			[]string{"node_id"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_transitions_total",
				Help:      "Stage transitions made by dialogue nodes.",
			},
			[]string{"from", "to"},
		),
		InventoryCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inventory_lookups_total",
				Help:      "Inventory lookups by asset type and outcome.",
			},
			[]string{"asset_type", "outcome"},
		),
		InventoryTiming: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "inventory_lookup_duration_seconds",
				Help:      "Duration of inventory lookups.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"asset_type"},
		),
	}
	m.registry.MustRegister(
		m.NodeVisits,
		m.Transitions,
		m.InventoryCalls,
		m.InventoryTiming,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			m.Transitions.WithLabelValues(string(e.FromStage), string(e.ToStage)).Inc()
		},
		OnInventoryLookup: func(ctx context.Context, e *domain.InventoryEvent) {
			m.InventoryCalls.WithLabelValues(e.AssetType, outcome(e)).Inc()
			m.InventoryTiming.WithLabelValues(e.AssetType).Observe(e.Duration.Seconds())
		},
	}
}

func outcome(e *domain.InventoryEvent) string {
	switch {
	case e.IsError:
		return "error"
	case e.Available:
		return "available"
	default:
		return "unavailable"
	}
}

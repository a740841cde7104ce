package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_fulfillment",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total number of orders created.",
	})

	ordersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "order_fulfillment",
		Subsystem: "orders",
		Name:      "creation_failures_total",
		Help:      "Total number of failed order creations.",
	})

	statusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_fulfillment",
		Subsystem: "orders",
		Name:      "status_updates_total",
		Help:      "Total number of order status update requests.",
	}, []string{"status", "result"})
)

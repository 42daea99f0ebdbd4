package graph

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("nodegraph.graph")
	meter  = otel.Meter("nodegraph.graph")
)

// initMetrics creates the graph instruments on first use. Failures are
// logged and leave the affected instrument nil.
func (g *Graph) initMetrics() {
	g.metricsOnce.Do(func() {
		var initErrors []string

		var err error
		g.nodeLatency, err = meter.Float64Histogram("nodegraph_node_duration_seconds",
			metric.WithDescription("Time spent recomputing each node"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_latency: "+err.Error())
		}

		g.nodeRecomputes, err = meter.Int64Counter("nodegraph_node_recompute_total",
			metric.WithDescription("Number of successful node recomputations"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_recomputes: "+err.Error())
		}

		g.nodeFailures, err = meter.Int64Counter("nodegraph_node_failure_total",
			metric.WithDescription("Number of failed node recomputations"),
		)
		if err != nil {
			initErrors = append(initErrors, "node_failures: "+err.Error())
		}

		if len(initErrors) > 0 {
			g.logger.Error("GRAPH: failed to initialize some metrics",
				slog.Int("failed_count", len(initErrors)),
				slog.Any("errors", initErrors),
			)
		}
	})
}

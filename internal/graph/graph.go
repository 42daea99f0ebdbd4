// Package graph wires a source image through an ordered chain of transform
// nodes into a sink, recomputing downstream outputs on every change.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

// Source loads the image that feeds the chain.
type Source interface {
	LoadImage(path string) (*imaging.Buffer, imaging.Metadata, error)
}

// Sink persists the chain's final image.
type Sink interface {
	SaveImage(path string, buf *imaging.Buffer) error
}

// Graph is a linear node chain: Source -> n1 -> ... -> nk -> Sink.
//
// Every mutation recomputes the affected node and everything downstream of
// it before returning. Buffers returned by Output, Source and Node.Output
// stay valid until the next mutating call.
type Graph struct {
	mu     sync.RWMutex
	logger *slog.Logger

	loader Source
	sink   Sink
	tracer trace.Tracer

	source *imaging.Buffer
	meta   imaging.Metadata
	nodes  []*Node

	// Last buffer the output callback was fired for.
	pushed          *imaging.Buffer
	onOutputUpdated func()

	metricsOnce    sync.Once
	nodeLatency    metric.Float64Histogram
	nodeRecomputes metric.Int64Counter
	nodeFailures   metric.Int64Counter
}

// New creates an empty graph. loader and sink may be nil, in which case
// LoadSource and Save return ErrNoSource and ErrNoSink.
func New(loader Source, sink Sink, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{
		loader: loader,
		sink:   sink,
		tracer: tracer,
		logger: logger,
	}
}

// OnOutputUpdated registers fn to run whenever the sink's effective image
// changes. fn runs on the caller's goroutine after the graph lock is released.
func (g *Graph) OnOutputUpdated(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onOutputUpdated = fn
}

// LoadSource reads path through the source adapter and makes it the new
// source image. On failure the graph is left untouched.
func (g *Graph) LoadSource(ctx context.Context, path string) (err error) {
	ctx, span := g.tracer.Start(ctx, "graph.LoadSource", trace.WithAttributes(attribute.String("path", path)))
	defer func() { endSpan(span, err) }()

	if g.loader == nil {
		return ErrNoSource
	}

	g.logger.Info("GRAPH: Loading source", "path", path)
	buf, meta, err := g.loader.LoadImage(path)
	if err != nil {
		g.logger.Error("GRAPH: Failed to load source", "path", path, "error", err)
		return err
	}
	return g.SetSource(ctx, buf, meta)
}

// SetSource replaces the source image, taking ownership of buf, and
// recomputes the whole chain.
func (g *Graph) SetSource(ctx context.Context, buf *imaging.Buffer, meta imaging.Metadata) (err error) {
	ctx, span := g.tracer.Start(ctx, "graph.SetSource")
	defer func() { endSpan(span, err) }()

	if buf == nil {
		return imaging.ErrNoInput
	}
	span.SetAttributes(attribute.Int("width", meta.Width), attribute.Int("height", meta.Height))

	g.mu.Lock()
	g.source.Close()
	g.source = buf
	g.meta = meta
	for _, n := range g.nodes {
		n.invalidate()
	}
	g.logger.Info("GRAPH: Source set",
		"width", meta.Width, "height", meta.Height, "channels", meta.Channels, "format", meta.Format)

	err = g.propagate(ctx, 0, "source_changed")
	fn := g.takeNotification()
	g.mu.Unlock()

	notify(fn)
	return err
}

// AddNode appends a node of the given kind with default parameters and
// computes it if an upstream image exists. The node stays in the chain even
// when that first computation fails; the error is returned alongside it.
func (g *Graph) AddNode(ctx context.Context, kind transforms.Kind) (_ *Node, err error) {
	ctx, span := g.tracer.Start(ctx, "graph.AddNode", trace.WithAttributes(attribute.String("kind", kind.String())))
	defer func() { endSpan(span, err) }()

	g.mu.Lock()

	if kind == transforms.KindChannelSplitter && g.hasKindLocked(kind) {
		g.mu.Unlock()
		g.logger.Warn("GRAPH: Rejected duplicate channel splitter")
		return nil, ErrDuplicateSplitter
	}

	node, err := newNode(kind)
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.nodes = append(g.nodes, node)
	span.SetAttributes(attribute.String("node_id", node.id))
	g.logger.Info("GRAPH: Node added", "node_id", node.id, "kind", kind.String(), "position", len(g.nodes)-1)

	err = g.propagate(ctx, len(g.nodes)-1, "node_added")
	fn := g.takeNotification()
	g.mu.Unlock()

	notify(fn)
	return node, err
}

// RemoveLast drops the tail node. The sink falls back to the previous
// node's output, or the source when the chain becomes empty.
func (g *Graph) RemoveLast(ctx context.Context) (err error) {
	_, span := g.tracer.Start(ctx, "graph.RemoveLast")
	defer func() { endSpan(span, err) }()

	g.mu.Lock()
	if len(g.nodes) == 0 {
		g.mu.Unlock()
		return ErrEmptyChain
	}

	tail := g.nodes[len(g.nodes)-1]
	tail.invalidate()
	g.nodes[len(g.nodes)-1] = nil
	g.nodes = g.nodes[:len(g.nodes)-1]
	span.SetAttributes(attribute.String("node_id", tail.id))
	g.logger.Info("GRAPH: Node removed", "node_id", tail.id, "kind", tail.kind.String())

	fn := g.takeNotification()
	g.mu.Unlock()

	notify(fn)
	return nil
}

// SetParameter stores a clamped value on the node and recomputes it and
// everything downstream.
func (g *Graph) SetParameter(ctx context.Context, id, name string, value int) (err error) {
	ctx, span := g.tracer.Start(ctx, "graph.SetParameter",
		trace.WithAttributes(
			attribute.String("node_id", id),
			attribute.String("parameter", name),
			attribute.Int("value", value),
		),
	)
	defer func() { endSpan(span, err) }()

	g.mu.Lock()

	idx := g.indexLocked(id)
	if idx < 0 {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	node := g.nodes[idx]
	stored, err := node.setParam(name, value)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.logger.Debug("GRAPH: Parameter changed",
		"node_id", id, "parameter", name, "requested", value, "stored", stored)

	err = g.propagate(ctx, idx, "parameter_changed")
	fn := g.takeNotification()
	g.mu.Unlock()

	notify(fn)
	return err
}

// Reset removes every splitter, blur and edge detection node, restores the
// defaults of the remaining nodes and recomputes from the source.
func (g *Graph) Reset(ctx context.Context) (err error) {
	ctx, span := g.tracer.Start(ctx, "graph.Reset")
	defer func() { endSpan(span, err) }()

	g.mu.Lock()

	kept := g.nodes[:0]
	dropped := 0
	for _, n := range g.nodes {
		n.invalidate()
		if n.kind.Extra() {
			dropped++
			continue
		}
		n.resetParams()
		kept = append(kept, n)
	}
	for i := len(kept); i < len(g.nodes); i++ {
		g.nodes[i] = nil
	}
	g.nodes = kept
	span.SetAttributes(attribute.Int("dropped", dropped), attribute.Int("remaining", len(kept)))
	g.logger.Info("GRAPH: Reset", "dropped", dropped, "remaining", len(kept))

	err = g.propagate(ctx, 0, "reset")
	fn := g.takeNotification()
	g.mu.Unlock()

	notify(fn)
	return err
}

// Save writes the current output through the sink adapter.
func (g *Graph) Save(ctx context.Context, path string) (err error) {
	_, span := g.tracer.Start(ctx, "graph.Save", trace.WithAttributes(attribute.String("path", path)))
	defer func() { endSpan(span, err) }()

	if g.sink == nil {
		return ErrNoSink
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	out := g.outputLocked()
	if out == nil {
		return fmt.Errorf("nothing to save: %w", imaging.ErrNoInput)
	}
	if err := g.sink.SaveImage(path, out); err != nil {
		g.logger.Error("GRAPH: Save failed", "path", path, "error", err)
		return err
	}
	g.logger.Info("GRAPH: Output saved", "path", path, "size", out.String())
	return nil
}

// Output returns the sink's effective image: the tail node's output, or
// the source when the chain is empty. Nil means nothing to show yet.
func (g *Graph) Output() *imaging.Buffer {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.outputLocked()
}

// Source returns the current source image, or nil.
func (g *Graph) Source() *imaging.Buffer {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.source
}

// Metadata returns the metadata of the current source image.
func (g *Graph) Metadata() imaging.Metadata {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.meta
}

// Nodes returns the chain in order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Node(nil), g.nodes...)
}

// Node looks a node up by id.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if idx := g.indexLocked(id); idx >= 0 {
		return g.nodes[idx], true
	}
	return nil, false
}

// Input returns the buffer the node last consumed, or nil.
func (g *Graph) Input(id string) *imaging.Buffer {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if idx := g.indexLocked(id); idx >= 0 {
		return g.nodes[idx].input
	}
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Close releases every buffer the graph owns.
func (g *Graph) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.nodes {
		n.invalidate()
	}
	g.nodes = nil
	g.source.Close()
	g.source = nil
	g.pushed = nil
}

func (g *Graph) outputLocked() *imaging.Buffer {
	if len(g.nodes) == 0 {
		return g.source
	}
	return g.nodes[len(g.nodes)-1].output
}

func (g *Graph) indexLocked(id string) int {
	for i, n := range g.nodes {
		if n.id == id {
			return i
		}
	}
	return -1
}

func (g *Graph) hasKindLocked(kind transforms.Kind) bool {
	for _, n := range g.nodes {
		if n.kind == kind {
			return true
		}
	}
	return false
}

// upstreamLocked returns the buffer feeding the node at position idx.
func (g *Graph) upstreamLocked(idx int) *imaging.Buffer {
	if idx == 0 {
		return g.source
	}
	return g.nodes[idx-1].output
}

// propagate recomputes nodes from position `from` to the tail. It stops
// quietly when a node has no input and stops with an error at the first
// failing node, leaving that node and its successors untouched.
func (g *Graph) propagate(ctx context.Context, from int, reason string) error {
	if from >= len(g.nodes) {
		return nil
	}
	g.initMetrics()

	ctx, span := g.tracer.Start(ctx, "graph.propagate",
		trace.WithAttributes(
			attribute.String("reason", reason),
			attribute.Int("from", from),
			attribute.Int("nodes", len(g.nodes)),
		),
	)
	defer span.End()

	start := time.Now()
	input := g.upstreamLocked(from)
	for i := from; i < len(g.nodes); i++ {
		node := g.nodes[i]
		if err := g.computeNode(ctx, node, input); err != nil {
			if errors.Is(err, imaging.ErrNoInput) {
				g.logger.Debug("GRAPH: Propagation stopped, no input", "node_id", node.id, "position", i)
				span.SetStatus(codes.Ok, "")
				return nil
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return &NodeError{NodeID: node.id, Kind: node.kind, Err: err}
		}
		input = node.output
	}

	g.logger.Debug("GRAPH: Propagation complete",
		"reason", reason, "from", from, "nodes", len(g.nodes)-from, "duration", time.Since(start))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (g *Graph) computeNode(ctx context.Context, node *Node, input *imaging.Buffer) error {
	kindAttr := attribute.String("kind", node.kind.String())

	ctx, span := g.tracer.Start(ctx, "graph.node."+node.kind.String(),
		trace.WithAttributes(kindAttr, attribute.String("node_id", node.id)),
	)
	defer span.End()

	start := time.Now()
	err := node.compute(input)
	duration := time.Since(start)

	if errors.Is(err, imaging.ErrNoInput) {
		return err
	}

	if g.nodeLatency != nil {
		g.nodeLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(kindAttr))
	}

	if err != nil {
		if g.nodeFailures != nil {
			g.nodeFailures.Add(ctx, 1, metric.WithAttributes(kindAttr))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Error("GRAPH: Node failed", "node_id", node.id, "kind", node.kind.String(), "error", err)
		return err
	}

	if g.nodeRecomputes != nil {
		g.nodeRecomputes.Add(ctx, 1, metric.WithAttributes(kindAttr))
	}
	span.SetStatus(codes.Ok, "")
	g.logger.Debug("GRAPH: Node recomputed",
		"node_id", node.id, "kind", node.kind.String(), "output", node.output.String(), "duration", duration)
	return nil
}

// takeNotification returns the callback to fire if the sink's effective
// image changed since the last notification, and records the new image.
func (g *Graph) takeNotification() func() {
	out := g.outputLocked()
	if out == g.pushed {
		return nil
	}
	g.pushed = out
	if out == nil {
		return nil
	}
	return g.onOutputUpdated
}

// endSpan marks span failed when err is set and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}

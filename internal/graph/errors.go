package graph

import (
	"errors"
	"fmt"

	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

// Sentinel errors for graph operations.
var (
	// ErrNodeNotFound is returned when a node id is not part of the chain.
	ErrNodeNotFound = errors.New("node not found")

	// ErrUnknownParameter is returned when a node does not declare the parameter.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrDuplicateSplitter is returned when a second channel splitter is appended.
	ErrDuplicateSplitter = errors.New("chain already has a channel splitter")

	// ErrEmptyChain is returned when removing from a chain without nodes.
	ErrEmptyChain = errors.New("chain has no nodes")

	// ErrNoSource is returned when loading without a source adapter.
	ErrNoSource = errors.New("no source adapter configured")

	// ErrNoSink is returned when saving without a sink adapter.
	ErrNoSink = errors.New("no sink adapter configured")
)

// NodeError wraps a failure raised while recomputing one node.
type NodeError struct {
	NodeID string
	Kind   transforms.Kind
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.Kind, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

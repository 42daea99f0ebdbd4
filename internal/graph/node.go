package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

// Node wraps a transform with its current parameters, a borrowed reference
// to the upstream buffer it last consumed and the output it owns.
type Node struct {
	id        string
	kind      transforms.Kind
	transform transforms.Transform
	params    transforms.Params

	input  *imaging.Buffer // borrowed from upstream, never closed here
	output *imaging.Buffer
}

func newNode(kind transforms.Kind) (*Node, error) {
	t, err := transforms.New(kind)
	if err != nil {
		return nil, err
	}
	return &Node{
		id:        uuid.NewString(),
		kind:      kind,
		transform: t,
		params:    transforms.DefaultParams(t.Parameters()),
	}, nil
}

// ID returns the node's unique identifier.
func (n *Node) ID() string { return n.id }

// Kind returns the node's transform kind.
func (n *Node) Kind() transforms.Kind { return n.kind }

// Name returns the display name.
func (n *Node) Name() string { return n.kind.Title() }

// Transform exposes the node's transform, e.g. to query splitter options.
func (n *Node) Transform() transforms.Transform { return n.transform }

// Parameters returns the declared parameters in order.
func (n *Node) Parameters() []transforms.ParameterInfo {
	return n.transform.Parameters()
}

// Params returns a copy of the current parameter values.
func (n *Node) Params() transforms.Params {
	return n.params.Clone()
}

// Param returns the current value of one parameter.
func (n *Node) Param(name string) (int, bool) {
	v, ok := n.params[name]
	return v, ok
}

// Output returns the cached output, nil when nothing was computed yet.
// The buffer stays owned by the node.
func (n *Node) Output() *imaging.Buffer { return n.output }

// HasOutput reports whether the node holds a cached output.
func (n *Node) HasOutput() bool { return n.output != nil }

func (n *Node) String() string {
	return fmt.Sprintf("%s[%s]", n.kind, n.id[:8])
}

// setParam stores a clamped value and returns what was stored.
func (n *Node) setParam(name string, value int) (int, error) {
	info, ok := transforms.Lookup(n.Parameters(), name)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, n.kind.Title(), name)
	}
	clamped := info.Clamp(value)
	n.params[name] = clamped
	return clamped, nil
}

func (n *Node) resetParams() {
	n.params = transforms.DefaultParams(n.Parameters())
}

// compute recomputes the output against input. On failure the previous
// output is kept.
func (n *Node) compute(input *imaging.Buffer) error {
	n.input = input
	if input == nil {
		return imaging.ErrNoInput
	}

	out, err := n.transform.Apply(input, n.params)
	if err != nil {
		return err
	}
	n.output.Close()
	n.output = out
	return nil
}

// invalidate drops the cached output and any per-image transform state.
func (n *Node) invalidate() {
	n.output.Close()
	n.output = nil
	n.input = nil
	if r, ok := n.transform.(transforms.Resetter); ok {
		r.Reset()
	}
}

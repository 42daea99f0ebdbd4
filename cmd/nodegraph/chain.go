package main

import (
	"fmt"
	"strings"

	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

// nodeSpec is one --node flag: a kind plus parameter assignments in the
// order given.
type nodeSpec struct {
	kind   transforms.Kind
	params []paramValue
}

type paramValue struct {
	name  string
	value int
}

// parseNodeSpec reads "kind" or "kind:name=value,name=value". Values are
// parsed against the kind's declarations, so enum labels and true/false
// are accepted.
func parseNodeSpec(s string) (nodeSpec, error) {
	kindPart, paramPart, hasParams := strings.Cut(strings.TrimSpace(s), ":")

	kind, err := transforms.ParseKind(kindPart)
	if err != nil {
		return nodeSpec{}, err
	}
	spec := nodeSpec{kind: kind}
	if !hasParams || strings.TrimSpace(paramPart) == "" {
		return spec, nil
	}

	t, err := transforms.New(kind)
	if err != nil {
		return nodeSpec{}, err
	}
	infos := t.Parameters()

	for _, assignment := range strings.Split(paramPart, ",") {
		name, raw, ok := strings.Cut(assignment, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nodeSpec{}, fmt.Errorf("node %s: malformed parameter %q, want name=value", kind, assignment)
		}
		info, found := transforms.Lookup(infos, name)
		if !found {
			return nodeSpec{}, fmt.Errorf("node %s: unknown parameter %q", kind, name)
		}
		v, err := info.Parse(raw)
		if err != nil {
			return nodeSpec{}, fmt.Errorf("node %s: %w", kind, err)
		}
		spec.params = append(spec.params, paramValue{name: name, value: v})
	}
	return spec, nil
}

func parseChain(specs []string) ([]nodeSpec, error) {
	chain := make([]nodeSpec, 0, len(specs))
	for _, s := range specs {
		spec, err := parseNodeSpec(s)
		if err != nil {
			return nil, err
		}
		chain = append(chain, spec)
	}
	return chain, nil
}

// Package remap plans and runs multi-hop namespace remaps of JVM artifacts and
// caches their results.
package remap

import (
	remaperrors "mcremap/internal/errors"
	"mcremap/internal/mapping"
)

// Hop is one namespace-to-namespace rewrite. Fallback supplies names the
// destination lacks. Game is the fallback namespace of the game jar placed on
// the hop's classpath: the game is provided in From with names missing from
// From taken from Game.
type Hop struct {
	From     string `json:"from" yaml:"from"`
	Fallback string `json:"fallback" yaml:"fallback"`
	Game     string `json:"game" yaml:"game"`
	To       string `json:"to" yaml:"to"`
}

func (h Hop) String() string {
	return h.From + "->" + h.To
}

// Plan returns the hops that take an artifact from dev (whose missing names
// come from devFallback) to prod. The route is the shortest path through the
// namespace graph; ties go to the lower namespace index. An empty plan means
// dev and prod are the same namespace.
//
// Only the first hop renames through devFallback. Later hops fall back to
// their own source names, so a symbol the destination lacks keeps the name
// the previous hop gave it. The game jar of each later hop is the form keyed
// by the namespace two steps back.
func Plan(tree *mapping.Tree, dev, devFallback, prod string) ([]Hop, error) {
	to := tree.Namespace(prod)
	if to == mapping.NullNamespace {
		return nil, unknownNamespace(tree, prod)
	}
	from := tree.Namespace(dev)
	if from == mapping.NullNamespace {
		return nil, unknownNamespace(tree, dev)
	}
	if from == to {
		return nil, nil
	}

	prev := map[int]int{from: from}
	queue := []int{from}
	for len(queue) > 0 && !found(prev, to) {
		ns := queue[0]
		queue = queue[1:]
		for _, next := range tree.Neighbors(ns) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = ns
			queue = append(queue, next)
		}
	}
	if !found(prev, to) {
		return nil, remaperrors.Newf(remaperrors.NoRemapPath, "no mappings connect %s to %s", dev, prod).
			WithDetails(map[string]interface{}{"from": dev, "to": prod, "available": tree.Namespaces()})
	}

	var route []int
	for ns := to; ns != from; ns = prev[ns] {
		route = append([]int{ns}, route...)
	}

	hops := make([]Hop, len(route))
	prevNs, prevPrev := dev, devFallback
	for i, ns := range route {
		label := tree.NamespaceName(ns)
		fallback := prevNs
		if i == 0 {
			fallback = devFallback
		}
		hops[i] = Hop{From: prevNs, Fallback: fallback, Game: prevPrev, To: label}
		prevPrev, prevNs = prevNs, label
	}
	return hops, nil
}

func found(prev map[int]int, ns int) bool {
	_, ok := prev[ns]
	return ok
}

func unknownNamespace(tree *mapping.Tree, ns string) error {
	return remaperrors.Newf(remaperrors.UnknownNamespace, "namespace %q not found", ns).
		WithDetails(map[string]interface{}{"namespace": ns, "available": tree.Namespaces()})
}

// HopNames renders hops for logs and cache markers.
func HopNames(hops []Hop) []string {
	out := make([]string, len(hops))
	for i, h := range hops {
		out[i] = h.String()
	}
	return out
}

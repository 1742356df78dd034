// Package graph wraps the relationship store. Edges are derived state:
// endpoint nodes and edges are MERGEd, so re-applying the same set is a
// no-op rather than a duplicate.
package graph

import "context"

type EdgeKind string

const (
	EdgeUsedFor    EdgeKind = "USED_FOR"
	EdgeInCategory EdgeKind = "IN_CATEGORY"
	EdgeHasTag     EdgeKind = "HAS_TAG"
)

// EdgeSpec names one relationship from a prefab to a named endpoint node.
type EdgeSpec struct {
	Kind EdgeKind
	Name string
}

type Store interface {
	// ApplyEdges merges the prefab node, every endpoint node and every edge.
	// Idempotent and commutative; ordering between edges is not guaranteed.
	ApplyEdges(ctx context.Context, prefabID string, edges []EdgeSpec) error
}

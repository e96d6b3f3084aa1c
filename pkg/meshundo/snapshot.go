// Package meshundo implements edit-mode mesh undo on top of a chunked,
// deduplicating content store. Each undo step captures one Snapshot per
// edited object; a snapshot's attribute buffers are immediately compacted
// into content-addressed states shared with the previous snapshot of the
// same mesh, and re-expanded on demand when the step is applied or freed.
package meshundo

import (
	"github.com/dkrider/meshundo/pkg/arraystore"
	"github.com/dkrider/meshundo/pkg/mesh"
)

// Snapshot is one object's captured mesh state for one undo step.
//
// Once compacted, none of the embedded mesh's layers hold buffers; the
// payload lives in the content store, reachable through the stored groups.
// Expand re-materializes the buffers while keeping the states, ExpandClear
// drops the buffers again.
type Snapshot struct {
	// Mesh is the embedded capture. Its Session carries the identity used
	// for reference matching between steps.
	Mesh mesh.Mesh

	SelectMode   int
	UVSelectMode int
	Shapenr      int

	// UndoSize is the expanded payload size at capture time, for the
	// host's undo memory accounting.
	UndoSize int

	// Chronological chain links, ordered by capture time across all
	// steps. Not to be confused with the host's step ordering: steps can
	// be freed out of order while this chain stays capture-ordered.
	chainPrev, chainNext *Snapshot

	store     snapshotStore
	compacted bool
}

// snapshotStore holds the content-state handles of a compacted snapshot.
// Nil entries mean the corresponding data was empty.
type snapshotStore struct {
	verts, edges, loops, faces *layerGroup

	keyblocks []*arraystore.State
	mselect   *arraystore.State
}

// layerGroup is a singly-linked run of content states for adjacent layers
// of one type, mirroring the live layer table's order. One state per
// physical layer; nil for empty layers.
type layerGroup struct {
	next   *layerGroup
	typ    mesh.LayerType
	states []*arraystore.State
}

// find returns the first group of the given type, used when the reference
// snapshot's group order is not aligned with the table being compacted.
func (g *layerGroup) find(typ mesh.LayerType) *layerGroup {
	for it := g; it != nil; it = it.next {
		if it.typ == typ {
			return it
		}
	}
	return nil
}

package meshundo

import (
	"fmt"

	"github.com/dkrider/meshundo/pkg/arraystore"
	"github.com/dkrider/meshundo/pkg/mesh"
)

// compactTable converts a live layer table into a grouped list of content
// states, deduplicating each layer against the same-typed layer of the
// reference group. Live buffers are always released; states are only built
// when create is set (the discard-only mode shared with ExpandClear).
// Returns nil for a table with no layers.
func (s *Service) compactTable(cd *mesh.AttrTable, elems int, create bool, ref *layerGroup) *layerGroup {
	refCurrent := ref
	var first, prev *layerGroup

	for layerStart := 0; layerStart < len(cd.Layers); {
		typ := cd.Layers[layerStart].Type

		// Dynamic layer records embed indirect allocations; their bytes
		// differ between snapshots even when the content does not, so
		// comparing against a reference burns CPU for nothing. Always
		// store a full copy.
		typeIsDynamic := typ.Dynamic()

		layerEnd := layerStart + 1
		for layerEnd < len(cd.Layers) && cd.Layers[layerEnd].Type == typ {
			layerEnd++
		}
		layerLen := layerEnd - layerStart

		var bs *arraystore.Store
		if create {
			bs = s.stores.Ensure(typ.Stride())

			if refCurrent != nil && refCurrent.typ == typ {
				// Common case, the reference is aligned.
			} else {
				// Full lookup when unaligned.
				refCurrent = ref.find(typ)
			}
		}

		var g *layerGroup
		if create {
			g = &layerGroup{typ: typ, states: make([]*arraystore.State, layerLen)}
			if prev != nil {
				prev.next = g
			} else {
				first = g
			}
			prev = g
		}

		for i := 0; i < layerLen; i++ {
			layer := &cd.Layers[layerStart+i]
			if create && layer.Data != nil {
				if len(layer.Data) != elems*typ.Stride() {
					panic(fmt.Sprintf("meshundo: %v layer holds %d bytes, want %d",
						typ, len(layer.Data), elems*typ.Stride()))
				}
				var stateRef *arraystore.State
				if refCurrent != nil && i < len(refCurrent.states) && !typeIsDynamic {
					stateRef = refCurrent.states[i]
				}
				g.states[i] = bs.StateAdd(layer.Data, stateRef)
			}
			layer.Data = nil
		}

		if create && refCurrent != nil {
			refCurrent = refCurrent.next
		}

		layerStart = layerEnd
	}

	return first
}

// expandTable walks the stored group and the live layer table in lockstep
// and installs a fresh buffer onto every layer. The table must have the
// same type order and layer count the group was compacted from; divergence
// is a programming error.
func (s *Service) expandTable(g *layerGroup, cd *mesh.AttrTable, elems int) {
	li := 0
	for ; g != nil; g = g.next {
		stride := g.typ.Stride()
		bs := s.stores.Get(stride)
		for i := 0; i < len(g.states); i++ {
			if li >= len(cd.Layers) || cd.Layers[li].Type != g.typ {
				panic(fmt.Sprintf("meshundo: stored group %v diverged from layer table", g.typ))
			}
			layer := &cd.Layers[li]
			if st := g.states[i]; st != nil {
				data := bs.StateData(st)
				if len(data) != stride*elems {
					panic(fmt.Sprintf("meshundo: %v state holds %d bytes, want %d",
						g.typ, len(data), stride*elems))
				}
				layer.Data = data
			} else {
				layer.Data = nil
			}
			li++
		}
	}
}

// freeTable releases every content state of the group back to its store.
func (s *Service) freeTable(g *layerGroup) {
	for ; g != nil; g = g.next {
		bs := s.stores.Get(g.typ.Stride())
		for _, st := range g.states {
			if st != nil {
				bs.StateRemove(st)
			}
		}
	}
}

// compactEx converts every table of the snapshot plus the shape-key blocks
// and the selection buffer. With create unset it only releases the live
// buffers, reusing the same walk (expanded-for-read data is discarded
// without touching the stored states).
func (s *Service) compactEx(snap *Snapshot, ref *Snapshot, create bool) {
	m := &snap.Mesh

	var refStore *snapshotStore
	if ref != nil {
		refStore = &ref.store
	} else {
		refStore = &snapshotStore{}
	}

	if v := s.compactTable(&m.Verts, m.TotVert, create, refStore.verts); create {
		snap.store.verts = v
	}
	if e := s.compactTable(&m.Edges, m.TotEdge, create, refStore.edges); create {
		snap.store.edges = e
	}
	if l := s.compactTable(&m.Loops, m.TotLoop, create, refStore.loops); create {
		snap.store.loops = l
	}
	if f := s.compactTable(&m.Faces, m.TotFace, create, refStore.faces); create {
		snap.store.faces = f
	}

	if m.Key != nil && len(m.Key.Blocks) > 0 {
		stride := m.Key.ElemSize
		var bs *arraystore.Store
		if create {
			bs = s.stores.Ensure(stride)
			snap.store.keyblocks = make([]*arraystore.State, len(m.Key.Blocks))
		}
		for i, kb := range m.Key.Blocks {
			if create {
				var stateRef *arraystore.State
				if ref != nil && ref.Mesh.Key != nil && i < len(ref.store.keyblocks) {
					stateRef = ref.store.keyblocks[i]
				}
				snap.store.keyblocks[i] = bs.StateAdd(kb.Data, stateRef)
			}
			kb.Data = nil
		}
	}

	if m.Select != nil && m.TotSelect > 0 {
		if create != (snap.store.mselect == nil) {
			panic("meshundo: selection buffer and stored state out of sync")
		}
		if create {
			var stateRef *arraystore.State
			if ref != nil {
				stateRef = ref.store.mselect
			}
			bs := s.stores.Ensure(mesh.SelectStride)
			snap.store.mselect = bs.StateAdd(m.Select, stateRef)
		}
		// TotSelect is kept for validation on expand.
		m.Select = nil
	}

	if create {
		s.users++
	}
}

// expandSnapshot re-materializes every buffer of a compacted snapshot from
// its stored states.
func (s *Service) expandSnapshot(snap *Snapshot) {
	m := &snap.Mesh

	s.expandTable(snap.store.verts, &m.Verts, m.TotVert)
	s.expandTable(snap.store.edges, &m.Edges, m.TotEdge)
	s.expandTable(snap.store.loops, &m.Loops, m.TotLoop)
	s.expandTable(snap.store.faces, &m.Faces, m.TotFace)

	if len(snap.store.keyblocks) > 0 {
		stride := m.Key.ElemSize
		bs := s.stores.Get(stride)
		for i, kb := range m.Key.Blocks {
			data := bs.StateData(snap.store.keyblocks[i])
			if len(data) != kb.TotElem*stride {
				panic(fmt.Sprintf("meshundo: key block %q holds %d bytes, want %d",
					kb.Name, len(data), kb.TotElem*stride))
			}
			kb.Data = data
		}
	}

	if snap.store.mselect != nil {
		bs := s.stores.Get(mesh.SelectStride)
		data := bs.StateData(snap.store.mselect)
		if len(data) != m.TotSelect*mesh.SelectStride {
			panic(fmt.Sprintf("meshundo: selection state holds %d bytes, want %d",
				len(data), m.TotSelect*mesh.SelectStride))
		}
		m.Select = data
	}
}

// freeSnapshotStore releases every content state the snapshot holds.
func (s *Service) freeSnapshotStore(snap *Snapshot) {
	s.freeTable(snap.store.verts)
	s.freeTable(snap.store.edges)
	s.freeTable(snap.store.loops)
	s.freeTable(snap.store.faces)
	snap.store.verts, snap.store.edges, snap.store.loops, snap.store.faces = nil, nil, nil, nil

	if len(snap.store.keyblocks) > 0 {
		bs := s.stores.Get(snap.Mesh.Key.ElemSize)
		for _, st := range snap.store.keyblocks {
			bs.StateRemove(st)
		}
		snap.store.keyblocks = nil
	}

	if snap.store.mselect != nil {
		bs := s.stores.Get(mesh.SelectStride)
		bs.StateRemove(snap.store.mselect)
		snap.store.mselect = nil
	}
}

package mesh

// EditMesh is the live working copy of a mesh while in edit mode. It owns
// its own attribute buffers; converting to and from Mesh always deep-copies
// so neither side can mutate the other.
type EditMesh struct {
	TotVert, TotEdge, TotLoop, TotFace int

	Verts AttrTable
	Edges AttrTable
	Loops AttrTable
	Faces AttrTable

	Key *Key

	Select    []byte
	TotSelect int

	SelectMode int
	Shapenr    int

	// NeedsFlush marks the working copy as ahead of the heap mesh and
	// pending a write-back.
	NeedsFlush bool
}

// FromEdit captures the working copy into a standalone Mesh. The session
// identity is left zero; the caller assigns it.
func FromEdit(em *EditMesh) *Mesh {
	m := &Mesh{
		TotVert:   em.TotVert,
		TotEdge:   em.TotEdge,
		TotLoop:   em.TotLoop,
		TotFace:   em.TotFace,
		Verts:     em.Verts.Clone(),
		Edges:     em.Edges.Clone(),
		Loops:     em.Loops.Clone(),
		Faces:     em.Faces.Clone(),
		Key:       em.Key.Clone(),
		TotSelect: em.TotSelect,
	}
	if em.Select != nil {
		m.Select = append([]byte(nil), em.Select...)
	}
	return m
}

// NewEdit builds a fresh working copy from the mesh data. The previous
// working copy, if any, is discarded by the caller.
func (m *Mesh) NewEdit() *EditMesh {
	em := &EditMesh{
		TotVert:   m.TotVert,
		TotEdge:   m.TotEdge,
		TotLoop:   m.TotLoop,
		TotFace:   m.TotFace,
		Verts:     m.Verts.Clone(),
		Edges:     m.Edges.Clone(),
		Loops:     m.Loops.Clone(),
		Faces:     m.Faces.Clone(),
		Key:       m.Key.Clone(),
		TotSelect: m.TotSelect,
	}
	if m.Select != nil {
		em.Select = append([]byte(nil), m.Select...)
	}
	return em
}

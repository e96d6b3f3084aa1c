// Package mesh holds the editable-mesh model the undo system operates on:
// fixed-stride attribute layers grouped into per-domain tables, optional
// shape-key blocks, and a selection history buffer. The undo code treats
// all of it as opaque byte payload; only strides and layer ordering matter.
package mesh

import "github.com/google/uuid"

// SelectStride is the record size of one selection history entry
// (element index + element kind, four bytes each).
const SelectStride = 8

// Selection mode flags.
const (
	SelectVert = 1 << iota
	SelectEdge
	SelectFace
)

// Mesh is the heap representation of mesh data. The undo system embeds a
// copy of it per snapshot; the rest of the application edits it through an
// EditMesh working copy.
type Mesh struct {
	// Session identifies the mesh across its whole lifetime, surviving
	// rename. Undo snapshots of the same mesh are matched through it.
	Session uuid.UUID

	Name string

	TotVert, TotEdge, TotLoop, TotFace int

	Verts AttrTable
	Edges AttrTable
	Loops AttrTable
	Faces AttrTable

	// Key holds shape-key blocks; nil when the mesh has none.
	Key *Key

	// Select is the selection history, TotSelect records of SelectStride
	// bytes. Nil when empty.
	Select    []byte
	TotSelect int

	// Edit is the live working copy while the mesh is in edit mode, nil
	// otherwise.
	Edit *EditMesh
}

// NewMesh returns an empty mesh with a fresh session identity.
func NewMesh(name string) *Mesh {
	return &Mesh{Session: uuid.New(), Name: name}
}

// DataSize returns the total attribute payload in bytes, used for undo-step
// size accounting.
func (m *Mesh) DataSize() int {
	n := m.Verts.dataSize() + m.Edges.dataSize() + m.Loops.dataSize() + m.Faces.dataSize()
	if m.Key != nil {
		for _, kb := range m.Key.Blocks {
			n += len(kb.Data)
		}
	}
	n += len(m.Select)
	return n
}

// Object is a scene object. Mesh objects are the only kind the undo system
// handles.
type Object struct {
	Name    string
	Mesh    *Mesh
	Shapenr int
}

// ToolSettings holds the scene-level selection modes the undo system
// restores on decode.
type ToolSettings struct {
	SelectMode   int
	UVSelectMode int
}

// Scene owns the tool settings.
type Scene struct {
	ToolSettings ToolSettings
}

// Key is a set of shape-key blocks sharing one element size.
type Key struct {
	ElemSize int
	Blocks   []*KeyBlock
}

// KeyBlock is a single shape key: TotElem elements of Key.ElemSize bytes.
type KeyBlock struct {
	Name    string
	TotElem int
	Data    []byte
}

// Clone returns a deep copy of the key.
func (k *Key) Clone() *Key {
	if k == nil {
		return nil
	}
	out := &Key{ElemSize: k.ElemSize, Blocks: make([]*KeyBlock, len(k.Blocks))}
	for i, kb := range k.Blocks {
		out.Blocks[i] = &KeyBlock{
			Name:    kb.Name,
			TotElem: kb.TotElem,
			Data:    append([]byte(nil), kb.Data...),
		}
	}
	return out
}

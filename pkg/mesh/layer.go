package mesh

import "fmt"

// LayerType identifies the record type of an attribute layer. The type
// fixes the per-element stride and whether records embed further
// allocations (dynamic).
type LayerType int

const (
	// LayerPosition is a 3×float32 vertex position.
	LayerPosition LayerType = iota
	// LayerNormal is a 3×float32 normal.
	LayerNormal
	// LayerUV is a 2×float32 texture coordinate.
	LayerUV
	// LayerColor is a 4×byte color.
	LayerColor
	// LayerFloat is a generic float32 attribute.
	LayerFloat
	// LayerInt is a generic int32 attribute.
	LayerInt
	// LayerShapeKeyIndex maps a vertex to its shape-key element.
	LayerShapeKeyIndex
	// LayerDeformWeight is a vertex-group weight record. Its records hold
	// indirect allocations, so its serialized form differs between
	// otherwise identical snapshots.
	LayerDeformWeight
)

// layerStride maps each layer type to its per-element size in bytes.
var layerStride = map[LayerType]int{
	LayerPosition:      12,
	LayerNormal:        12,
	LayerUV:            8,
	LayerColor:         4,
	LayerFloat:         4,
	LayerInt:           4,
	LayerShapeKeyIndex: 4,
	LayerDeformWeight:  16,
}

var layerName = map[LayerType]string{
	LayerPosition:      "position",
	LayerNormal:        "normal",
	LayerUV:            "uv",
	LayerColor:         "color",
	LayerFloat:         "float",
	LayerInt:           "int",
	LayerShapeKeyIndex: "shape_key_index",
	LayerDeformWeight:  "deform_weight",
}

// Stride returns the per-element size of the layer type in bytes.
func (t LayerType) Stride() int {
	s, ok := layerStride[t]
	if !ok {
		panic(fmt.Sprintf("mesh: unknown layer type %d", int(t)))
	}
	return s
}

// Dynamic reports whether records of this type embed indirect allocations.
// Comparing dynamic records byte-wise for deduplication wastes CPU: the
// bytes differ even when the logical content does not.
func (t LayerType) Dynamic() bool {
	return t == LayerDeformWeight
}

func (t LayerType) String() string {
	if n, ok := layerName[t]; ok {
		return n
	}
	return fmt.Sprintf("LayerType(%d)", int(t))
}

// Layer is one attribute layer: a name and a flat per-element buffer of
// Type.Stride() bytes each. Nil Data means the layer is empty.
type Layer struct {
	Type LayerType
	Name string
	Data []byte
}

// AttrTable is the ordered layer table of one element domain. Layers of
// the same type are kept adjacent (multiple UV maps, for example).
type AttrTable struct {
	Layers []Layer
}

// AddLayer appends a layer of the given type filled with data, keeping the
// table's grouped-by-type ordering by inserting at the end of the type's
// run.
func (t *AttrTable) AddLayer(typ LayerType, name string, data []byte) {
	at := len(t.Layers)
	for i, l := range t.Layers {
		if l.Type == typ {
			at = i + 1
		}
	}
	t.Layers = append(t.Layers, Layer{})
	copy(t.Layers[at+1:], t.Layers[at:])
	t.Layers[at] = Layer{Type: typ, Name: name, Data: data}
}

// Clone returns a deep copy of the table.
func (t *AttrTable) Clone() AttrTable {
	out := AttrTable{Layers: make([]Layer, len(t.Layers))}
	for i, l := range t.Layers {
		out.Layers[i] = Layer{Type: l.Type, Name: l.Name}
		if l.Data != nil {
			out.Layers[i].Data = append([]byte(nil), l.Data...)
		}
	}
	return out
}

func (t *AttrTable) dataSize() int {
	n := 0
	for _, l := range t.Layers {
		n += len(l.Data)
	}
	return n
}

package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerTypeStride(t *testing.T) {
	tests := []struct {
		typ     LayerType
		stride  int
		dynamic bool
	}{
		{LayerPosition, 12, false},
		{LayerNormal, 12, false},
		{LayerUV, 8, false},
		{LayerColor, 4, false},
		{LayerFloat, 4, false},
		{LayerInt, 4, false},
		{LayerShapeKeyIndex, 4, false},
		{LayerDeformWeight, 16, true},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.stride, tt.typ.Stride())
			assert.Equal(t, tt.dynamic, tt.typ.Dynamic())
		})
	}
	assert.Panics(t, func() { LayerType(99).Stride() })
}

func TestAttrTableAddLayerKeepsTypeRuns(t *testing.T) {
	var tbl AttrTable
	tbl.AddLayer(LayerPosition, "position", make([]byte, 12))
	tbl.AddLayer(LayerUV, "uv_a", make([]byte, 8))
	tbl.AddLayer(LayerColor, "color", make([]byte, 4))
	tbl.AddLayer(LayerUV, "uv_b", make([]byte, 8))

	var order []LayerType
	for _, l := range tbl.Layers {
		order = append(order, l.Type)
	}
	assert.Equal(t, []LayerType{LayerPosition, LayerUV, LayerUV, LayerColor}, order)
	assert.Equal(t, "uv_a", tbl.Layers[1].Name)
	assert.Equal(t, "uv_b", tbl.Layers[2].Name)
}

func TestFromEditRoundTrip(t *testing.T) {
	em := &EditMesh{TotVert: 2, TotSelect: 1, SelectMode: SelectVert, Shapenr: 2}
	em.Verts.AddLayer(LayerPosition, "position", []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24,
	})
	em.Select = make([]byte, SelectStride)
	em.Key = &Key{ElemSize: 12, Blocks: []*KeyBlock{
		{Name: "Basis", TotElem: 2, Data: make([]byte, 24)},
	}}

	m := FromEdit(em)
	require.Equal(t, 2, m.TotVert)
	assert.Equal(t, em.Verts.Layers[0].Data, m.Verts.Layers[0].Data)
	assert.Equal(t, em.Select, m.Select)
	require.NotNil(t, m.Key)
	assert.Equal(t, em.Key.Blocks[0].Data, m.Key.Blocks[0].Data)

	// Deep copy: mutating the capture must not touch the working copy.
	m.Verts.Layers[0].Data[0] = 99
	m.Key.Blocks[0].Data[0] = 99
	assert.EqualValues(t, 1, em.Verts.Layers[0].Data[0])
	assert.EqualValues(t, 0, em.Key.Blocks[0].Data[0])

	em2 := m.NewEdit()
	assert.Equal(t, m.Verts.Layers[0].Data, em2.Verts.Layers[0].Data)
	em2.Verts.Layers[0].Data[1] = 77
	assert.NotEqual(t, em2.Verts.Layers[0].Data[1], m.Verts.Layers[0].Data[1])
}

func TestMeshDataSize(t *testing.T) {
	m := NewMesh("cube")
	assert.NotEqual(t, m.Session, NewMesh("cube").Session)
	assert.Zero(t, m.DataSize())

	m.TotVert = 3
	m.Verts.AddLayer(LayerPosition, "position", make([]byte, 36))
	m.Verts.AddLayer(LayerFloat, "mask", make([]byte, 12))
	m.Key = &Key{ElemSize: 12, Blocks: []*KeyBlock{{TotElem: 3, Data: make([]byte, 36)}}}
	m.Select = make([]byte, 2*SelectStride)
	m.TotSelect = 2

	assert.Equal(t, 36+12+36+16, m.DataSize())
}

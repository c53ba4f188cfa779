package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeKey(t *testing.T) {
	// The same undirected edge packs identically in either vertex order
	{
		ek1 := NewEdgeKey([2]int{0, 4})
		ek2 := NewEdgeKey([2]int{4, 0})
		assert.Equal(t, ek1, ek2)
		verts := ek1.GetVertices()
		assert.Equal(t, [2]int{0, 4}, verts)
	}
	// Large indices survive the round trip
	{
		ek := NewEdgeKey([2]int{1<<31 - 1, 100})
		verts := ek.GetVertices()
		assert.Equal(t, [2]int{100, 1<<31 - 1}, verts)
	}
	// Distinct edges yield distinct keys
	{
		ek1 := NewEdgeKey([2]int{1, 2})
		ek2 := NewEdgeKey([2]int{1, 3})
		ek3 := NewEdgeKey([2]int{2, 3})
		assert.NotEqual(t, ek1, ek2)
		assert.NotEqual(t, ek1, ek3)
		assert.NotEqual(t, ek2, ek3)
	}
}

func TestVisualArea(t *testing.T) {
	assert.Equal(t, V1, NewVisualArea("v1"))
	assert.Equal(t, OutsideROI, NewVisualArea("none"))
	assert.True(t, V1.Rank() < V2.Rank())
	assert.True(t, V2.Rank() < V3.Rank())
	assert.True(t, V3.Rank() < OutsideROI.Rank())
	assert.True(t, V1.BordersOn(V2))
	assert.True(t, V3.BordersOn(V2))
	assert.False(t, V1.BordersOn(V3))
	assert.False(t, V3.BordersOn(OutsideROI))
	assert.True(t, V2.InROI())
	assert.False(t, OutsideROI.InROI())
	assert.Equal(t, "V2", V2.String())
}

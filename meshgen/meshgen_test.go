package meshgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisk(t *testing.T) {
	msh := Disk(3, 8, 10, 0)
	assert.Equal(t, 1+3*8, msh.Nv)
	assert.Equal(t, 8+2*2*8, msh.Nf)
	// Interior is manifold, outermost ring is the boundary
	assert.False(t, msh.IsBoundary[0])
	for s := 0; s < 8; s++ {
		assert.False(t, msh.IsBoundary[1+8+s]) // ring 2
		assert.True(t, msh.IsBoundary[1+16+s]) // ring 3
	}
	// Curved cap keeps the same connectivity
	dome := Disk(3, 8, 10, 2)
	assert.Equal(t, msh.Nf, dome.Nf)
	assert.InDelta(t, 2., dome.VZ.AtVec(0), 1.e-14)
}

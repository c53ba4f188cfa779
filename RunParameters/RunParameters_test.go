package RunParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := `
Title: "Left hemisphere, subject 04"
PoleVertex: 1287
MaxRadius: 55
FlattenMethod: conformal
RunMode: data
WData: 1
WSmooth: 0.25
WTopo: 4
MaxIterations: 250
Seed: 99
`
	rp := DefaultRunParameters()
	require.NoError(t, rp.Parse([]byte(doc)))
	assert.Equal(t, "Left hemisphere, subject 04", rp.Title)
	assert.Equal(t, 1287, rp.PoleVertex)
	assert.Equal(t, 55., rp.MaxRadius)
	assert.Equal(t, "conformal", rp.FlattenMethod)
	assert.Equal(t, 0.25, rp.WSmooth)
	assert.Equal(t, int64(99), rp.Seed)
	// Unset fields keep their defaults
	assert.Equal(t, 1.e-6, rp.Tolerance)
	assert.Equal(t, 200, rp.FlattenMaxIterations)
	require.NoError(t, rp.Validate())
}

func TestValidate(t *testing.T) {
	good := DefaultRunParameters()
	require.NoError(t, good.Validate())

	cases := []struct {
		name   string
		mutate func(*RunParameters)
	}{
		{"negativePole", func(rp *RunParameters) { rp.PoleVertex = -1 }},
		{"negativeRadius", func(rp *RunParameters) { rp.MaxRadius = -5 }},
		{"negativeWeight", func(rp *RunParameters) { rp.WTopo = -1 }},
		{"badMethod", func(rp *RunParameters) { rp.FlattenMethod = "isometric" }},
		{"badMode", func(rp *RunParameters) { rp.RunMode = "anatomical" }},
	}
	for _, c := range cases {
		rp := DefaultRunParameters()
		c.mutate(rp)
		assert.Error(t, rp.Validate(), c.name)
	}
}

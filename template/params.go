package template

/*
Parameters is the population-derived shape parameter set of the analytic
retinotopy template, after the banded model of Schira MM, Tyler CW, Spehar
B, Breakspear M (2010), "Modeling Magnification and Anisotropy in the
Primate Foveal Confluence", PLOS Comput Biol 6(1). The values are fixed
constants fit from prior population data; a Parameters value is treated as
immutable once handed to NewModel.

The canonical template plane puts the foveal confluence at the origin with
u growing along increasing eccentricity and v walking across the V3-V2-V1-
V2-V3 band stack. Scale/Shear/Center place that plane onto the flattened
cortex coordinates produced by the flattener.
*/
type Parameters struct {
	A      float64 // Cortical magnification rate: rho = Lambda*(exp(A*u)-1)
	Lambda float64 // Foveal eccentricity scale
	Psi    float64 // Rotation of the canonical plane, radians
	MaxEcc float64 // Eccentricity at the outer edge of the model, degrees

	V1Size float64 // Half-width of the V1 band in canonical units
	V2Size float64 // Width of each V2 band
	V3Size float64 // Width of each V3 band

	ScaleX, ScaleY   float64
	CenterX, CenterY float64
	ShearXY, ShearYX float64
}

// DefaultParameters returns the population fit used when no subject-group
// override is supplied.
func DefaultParameters() Parameters {
	return Parameters{
		A:       0.5,
		Lambda:  1.0,
		Psi:     0.15,
		MaxEcc:  90.0,
		V1Size:  1.2,
		V2Size:  0.6,
		V3Size:  0.4,
		ScaleX:  7.0,
		ScaleY:  8.0,
		CenterX: -7.0,
		CenterY: -2.0,
		ShearXY: -0.2,
		ShearYX: 0.0,
	}
}

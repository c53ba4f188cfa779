/*
Package template evaluates the analytic retinotopy template: a stateless
map from flattened cortical coordinates to (polar angle, eccentricity,
visual area). Polar angle is measured in degrees from the upper vertical
meridian (0) through horizontal (90) to the lower vertical meridian (180);
eccentricity is degrees of visual angle from fixation.
*/
package template

import (
	"math"

	"github.com/neurogeom/retreg/types"
)

// ThetaSentinel is the polar angle reported at the exact foveal confluence,
// where the true angle is undefined.
const ThetaSentinel = 90.0

type Model struct {
	p Parameters
	// Constant affine pieces of the cortex <-> canonical transforms,
	// precomputed at construction
	fwd, inv [2][2]float64
}

func NewModel(p Parameters) (md *Model) {
	md = &Model{p: p}
	var (
		cosP, sinP = math.Cos(p.Psi), math.Sin(p.Psi)
		// forward: scale * shear * rotation
		shear = [2][2]float64{{1, p.ShearXY}, {p.ShearYX, 1}}
		rot   = [2][2]float64{{cosP, -sinP}, {sinP, cosP}}
	)
	sr := matMul2(shear, rot)
	md.fwd = [2][2]float64{
		{p.ScaleX * sr[0][0], p.ScaleX * sr[0][1]},
		{p.ScaleY * sr[1][0], p.ScaleY * sr[1][1]},
	}
	md.inv = matInv2(md.fwd)
	return
}

func (md *Model) Parameters() Parameters { return md.p }

// BandCoordinate maps a flattened cortex position to the canonical template
// plane: u along eccentricity, v across the area bands.
func (md *Model) BandCoordinate(x, y float64) (u, v float64) {
	var (
		px = x - md.p.CenterX
		py = y - md.p.CenterY
	)
	u = md.inv[0][0]*px + md.inv[0][1]*py
	v = md.inv[1][0]*px + md.inv[1][1]*py
	return
}

// BandGradient returns the constant partial derivatives of the canonical
// coordinates with respect to the cortex coordinates (the inverse affine
// placement is linear, so these do not depend on position).
func (md *Model) BandGradient() (dUdX, dUdY, dVdX, dVdY float64) {
	return md.inv[0][0], md.inv[0][1], md.inv[1][0], md.inv[1][1]
}

// CortexToAngle evaluates the template at a flattened cortex position.
// Outside the modeled bands the area is OutsideROI and angle/eccentricity
// carry their limit values.
func (md *Model) CortexToAngle(x, y float64) (theta, rho float64, area types.VisualArea) {
	u, v := md.BandCoordinate(x, y)
	return md.evalBand(u, v)
}

func (md *Model) evalBand(u, v float64) (theta, rho float64, area types.VisualArea) {
	var (
		p = md.p
	)
	if u < 0 {
		// Behind the foveal confluence
		return ThetaSentinel, 0, types.OutsideROI
	}
	// At the exact confluence (u=0, v=0) this yields rho=0 and theta=90,
	// the defined limit values, with no division by the vanishing radius
	rho = p.Lambda * math.Expm1(p.A*u)
	if rho > p.MaxEcc {
		return ThetaSentinel, p.MaxEcc, types.OutsideROI
	}
	var (
		av = math.Abs(v)
		sv = 1.0
	)
	if v < 0 {
		sv = -1
	}
	switch {
	case av <= p.V1Size:
		area = types.V1
		theta = 90 * (1 + v/p.V1Size)
	case av <= p.V1Size+p.V2Size:
		area = types.V2
		t := (av - p.V1Size) / p.V2Size
		if sv > 0 {
			theta = 180 - 90*t
		} else {
			theta = 90 * t
		}
	case av <= p.V1Size+p.V2Size+p.V3Size:
		area = types.V3
		t := (av - p.V1Size - p.V2Size) / p.V3Size
		if sv > 0 {
			theta = 90 + 90*t
		} else {
			theta = 90 - 90*t
		}
	default:
		return ThetaSentinel, rho, types.OutsideROI
	}
	return
}

/*
Gradient returns the partial derivatives of polar angle and eccentricity
with respect to the flattened cortex coordinates at (x,y). Within a band
the template is smooth; across band boundaries the angle derivative
reverses sign, and the one-sided derivative of the containing band is
returned.
*/
func (md *Model) Gradient(x, y float64) (dThdX, dThdY, dRhdX, dRhdY float64) {
	var (
		p     = md.p
		u, v  = md.BandCoordinate(x, y)
		av    = math.Abs(v)
		dThdV float64
		dRhdU float64
	)
	if u < 0 {
		return 0, 0, 0, 0
	}
	rho := p.Lambda * math.Expm1(p.A*u)
	if rho <= p.MaxEcc {
		dRhdU = p.Lambda * p.A * math.Exp(p.A*u)
	}
	// The angle map reverses direction at each area boundary, so the sign
	// of dTheta/dv alternates across the band stack (and is the same on
	// both sides of V1 by symmetry)
	switch {
	case av <= p.V1Size:
		dThdV = 90 / p.V1Size
	case av <= p.V1Size+p.V2Size:
		dThdV = -90 / p.V2Size
	case av <= p.V1Size+p.V2Size+p.V3Size:
		dThdV = 90 / p.V3Size
	default:
		dThdV = 0
	}
	dThdX = dThdV * md.inv[1][0]
	dThdY = dThdV * md.inv[1][1]
	dRhdX = dRhdU * md.inv[0][0]
	dRhdY = dRhdU * md.inv[0][1]
	return
}

// AngleToCortex is the forward model: it places a visual field position
// (theta, rho) within the requested area band onto the flattened cortex.
func (md *Model) AngleToCortex(theta, rho float64, area types.VisualArea) (x, y float64) {
	var (
		p = md.p
		u = math.Log1p(rho/p.Lambda) / p.A
		v float64
	)
	switch area {
	case types.V1:
		v = p.V1Size * (theta/90 - 1)
	case types.V2:
		if theta >= 90 {
			v = p.V1Size + p.V2Size*(180-theta)/90
		} else {
			v = -p.V1Size - p.V2Size*theta/90
		}
	case types.V3:
		if theta >= 90 {
			v = p.V1Size + p.V2Size + p.V3Size*(theta-90)/90
		} else {
			v = -p.V1Size - p.V2Size - p.V3Size*(90-theta)/90
		}
	default:
		v = p.V1Size + p.V2Size + p.V3Size + 1
	}
	x = md.fwd[0][0]*u + md.fwd[0][1]*v + p.CenterX
	y = md.fwd[1][0]*u + md.fwd[1][1]*v + p.CenterY
	return
}

func matMul2(a, b [2][2]float64) (c [2][2]float64) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			c[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return
}

func matInv2(a [2][2]float64) (inv [2][2]float64) {
	det := a[0][0]*a[1][1] - a[0][1]*a[1][0]
	inv[0][0] = a[1][1] / det
	inv[0][1] = -a[0][1] / det
	inv[1][0] = -a[1][0] / det
	inv[1][1] = a[0][0] / det
	return
}

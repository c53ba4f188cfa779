package geometry2D

import "math"

type Point struct {
	X [2]float64
}

func NewPoint(x, y float64) (pt Point) {
	pt.X[0], pt.X[1] = x, y
	return
}

// SignedArea returns twice the signed area of the triangle a-b-c.
// Counter-clockwise winding is positive, clockwise is negative.
func SignedArea(a, b, c Point) float64 {
	return (b.X[0]-a.X[0])*(c.X[1]-a.X[1]) - (c.X[0]-a.X[0])*(b.X[1]-a.X[1])
}

// Orientation returns +1 for counter-clockwise, -1 for clockwise and 0 for
// degenerate (collinear) triangles.
func Orientation(a, b, c Point) int {
	area := SignedArea(a, b, c)
	switch {
	case area > 0:
		return 1
	case area < 0:
		return -1
	}
	return 0
}

// TriArea3D returns twice the area of the 3D triangle spanned by the points
// (ax,ay,az), (bx,by,bz), (cx,cy,cz) - the magnitude of the cross product of
// two edge vectors.
func TriArea3D(ax, ay, az, bx, by, bz, cx, cy, cz float64) float64 {
	var (
		ux, uy, uz = bx - ax, by - ay, bz - az
		vx, vy, vz = cx - ax, cy - ay, cz - az
	)
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	return math.Sqrt(nx*nx + ny*ny + nz*nz)
}

// Barycentric returns the barycentric coordinates of p within triangle a-b-c.
// The triangle must not be degenerate.
func Barycentric(p, a, b, c Point) (l1, l2, l3 float64) {
	var (
		det = SignedArea(a, b, c)
	)
	l1 = SignedArea(p, b, c) / det
	l2 = SignedArea(a, p, c) / det
	l3 = 1. - l1 - l2
	return
}

// Distance returns the Euclidean distance between two planar points.
func Distance(a, b Point) float64 {
	var (
		dx = b.X[0] - a.X[0]
		dy = b.X[1] - a.X[1]
	)
	return math.Sqrt(dx*dx + dy*dy)
}

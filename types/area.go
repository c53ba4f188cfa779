package types

import "fmt"

/*
VisualArea labels a cortical surface vertex with the retinotopically organized
visual area it belongs to. The numeric order encodes the expected spatial
order of the areas on the flattened cortex: V1 is innermost (adjacent to the
foveal confluence), V2 borders V1, V3 borders V2. OutsideROI sorts after all
real areas so that ordering checks can compare labels directly.
*/
type VisualArea uint8

const (
	V1 VisualArea = iota + 1
	V2
	V3
	OutsideROI
)

var AreaNameMap = map[string]VisualArea{
	"v1":      V1,
	"v2":      V2,
	"v3":      V3,
	"outside": OutsideROI,
	"none":    OutsideROI,
}

func NewVisualArea(label string) VisualArea {
	if va, ok := AreaNameMap[label]; ok {
		return va
	}
	panic(fmt.Errorf("unknown visual area label %q", label))
}

func (va VisualArea) String() string {
	switch va {
	case V1:
		return "V1"
	case V2:
		return "V2"
	case V3:
		return "V3"
	default:
		return "outside"
	}
}

// Rank is the distance of the area from the foveal confluence in band order.
// Adjacent areas differ by exactly one rank, which is what the boundary
// ordering constraint checks.
func (va VisualArea) Rank() int {
	return int(va)
}

func (va VisualArea) InROI() bool {
	return va >= V1 && va <= V3
}

// BordersOn reports whether the two areas share a retinotopic boundary on
// the cortical surface.
func (va VisualArea) BordersOn(other VisualArea) bool {
	if !va.InROI() || !other.InROI() {
		return false
	}
	d := va.Rank() - other.Rank()
	return d == 1 || d == -1
}

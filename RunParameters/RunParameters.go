package RunParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type RunParameters struct {
	Title                string  `yaml:"Title"`
	PoleVertex           int     `yaml:"PoleVertex"`
	MaxRadius            float64 `yaml:"MaxRadius"` // Geodesic extraction radius, 0 = whole component
	FlattenMethod        string  `yaml:"FlattenMethod"`
	FlattenMaxIterations int     `yaml:"FlattenMaxIterations"`
	FlattenTolerance     float64 `yaml:"FlattenTolerance"`
	RunMode              string  `yaml:"RunMode"`
	WData                float64 `yaml:"WData"`
	WSmooth              float64 `yaml:"WSmooth"`
	WTopo                float64 `yaml:"WTopo"`
	Tolerance            float64 `yaml:"Tolerance"`
	MaxIterations        int     `yaml:"MaxIterations"`
	Seed                 int64   `yaml:"Seed"`
	Parallelism          int     `yaml:"Parallelism"` // 0 = all CPUs
}

func DefaultRunParameters() *RunParameters {
	return &RunParameters{
		Title:                "untitled",
		PoleVertex:           0,
		MaxRadius:            0,
		FlattenMethod:        "distance",
		FlattenMaxIterations: 200,
		FlattenTolerance:     1.e-6,
		RunMode:              "data",
		WData:                1,
		WSmooth:              0.5,
		WTopo:                2,
		Tolerance:            1.e-6,
		MaxIterations:        500,
		Seed:                 1,
	}
}

func (rp *RunParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

func (rp *RunParameters) Validate() error {
	if rp.PoleVertex < 0 {
		return fmt.Errorf("PoleVertex must be non-negative, got %d", rp.PoleVertex)
	}
	if rp.MaxRadius < 0 {
		return fmt.Errorf("MaxRadius must be non-negative, got %g", rp.MaxRadius)
	}
	if rp.WData < 0 || rp.WSmooth < 0 || rp.WTopo < 0 {
		return fmt.Errorf("energy weights must be non-negative, got [%g %g %g]",
			rp.WData, rp.WSmooth, rp.WTopo)
	}
	if rp.MaxIterations < 0 || rp.FlattenMaxIterations < 0 {
		return fmt.Errorf("iteration limits must be non-negative")
	}
	switch rp.FlattenMethod {
	case "distance", "conformal", "area":
	default:
		return fmt.Errorf("unknown FlattenMethod %q, want distance, conformal or area",
			rp.FlattenMethod)
	}
	switch rp.RunMode {
	case "data", "template-only":
	default:
		return fmt.Errorf("unknown RunMode %q, want data or template-only", rp.RunMode)
	}
	return nil
}

func (rp *RunParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%d]\t\t\t\t= Pole Vertex\n", rp.PoleVertex)
	fmt.Printf("%8.5f\t\t= MaxRadius\n", rp.MaxRadius)
	fmt.Printf("[%s]\t\t= Flatten Method\n", rp.FlattenMethod)
	fmt.Printf("[%s]\t\t\t= Run Mode\n", rp.RunMode)
	fmt.Printf("[%g %g %g]\t\t= Weights (data, smooth, topo)\n", rp.WData, rp.WSmooth, rp.WTopo)
	fmt.Printf("%8.2e\t\t= Tolerance\n", rp.Tolerance)
	fmt.Printf("[%d]\t\t\t= MaxIterations\n", rp.MaxIterations)
	fmt.Printf("[%d]\t\t\t\t= Seed\n", rp.Seed)
}

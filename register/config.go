package register

import "fmt"

type RunMode uint8

const (
	TemplateOnly RunMode = iota
	DataDriven
)

var runModeNameMap = map[string]RunMode{
	"template-only": TemplateOnly,
	"template":      TemplateOnly,
	"data-driven":   DataDriven,
	"data":          DataDriven,
}

func NewRunMode(label string) RunMode {
	if m, ok := runModeNameMap[label]; ok {
		return m
	}
	panic(fmt.Errorf("unknown run mode %q", label))
}

func (m RunMode) Print() string {
	if m == TemplateOnly {
		return "template-only"
	}
	return "data-driven"
}

// Weights are the relative strengths of the three energy terms. Data pulls
// deformed coordinates toward measured retinotopy, Smooth penalizes
// displacement differences across mesh edges, Topo penalizes inverted
// visual-area ordering.
type Weights struct {
	Data, Smooth, Topo float64
}

type Config struct {
	Weights       Weights
	Tolerance     float64 // Relative energy decrease below which we stop
	Window        int     // Iterations over which the decrease is measured
	MaxIterations int
	StepRetries   int     // Step halvings before declaring failure
	InitialStep   float64
	Seed          int64
	Mode          RunMode
	ProcLimit     int // Goroutines for gradient evaluation, <=0 = NumCPU
	Verbose       bool
}

func DefaultConfig() Config {
	return Config{
		Weights:       Weights{Data: 1.0, Smooth: 0.5, Topo: 2.0},
		Tolerance:     1.e-6,
		Window:        5,
		MaxIterations: 500,
		StepRetries:   20,
		InitialStep:   1.0,
		Seed:          1,
		Mode:          DataDriven,
	}
}

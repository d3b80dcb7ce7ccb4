package InputParameters

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/notargets/gosweep/types"
)

// Defaults for water at 20C in the reference pipe
const (
	DefaultDiameter             = 0.017638075
	DefaultDensity              = 998.2
	DefaultViscosity            = 0.001003
	DefaultConvergenceThreshold = 0.05
)

// Parameters obtained from the YAML batch file
type BatchParameters struct {
	Title                string    `json:"Title"`
	Diameter             float64   `json:"Diameter"`
	Density              float64   `json:"Density"`
	Viscosity            float64   `json:"Viscosity"`
	ConvergenceThreshold float64   `json:"ConvergenceThreshold"`
	Template             string    `json:"Template"`
	Meshes               []string  `json:"Meshes"`
	Reynolds             []float64 `json:"Reynolds"`
}

const ExampleFile = `
########################################
Title: "Pipe sweep"
Diameter: 0.017638075
Density: 998.2
Viscosity: 0.001003
ConvergenceThreshold: 0.05
Template: template.jou
Meshes: [pipe_coarse.msh, pipe_fine.msh]
Reynolds: [50, 100, 500, 1000, 2000]
########################################
`

func (bp *BatchParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, bp); err != nil {
		return
	}
	bp.applyDefaults()
	return bp.Validate()
}

// Read parses a batch file, relative Template and Meshes paths resolve against its directory
func Read(path string) (bp *BatchParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	bp = &BatchParameters{}
	if err = bp.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	bp.Template = resolve(dir, bp.Template)
	for i, m := range bp.Meshes {
		bp.Meshes[i] = resolve(dir, m)
	}
	return
}

func resolve(dir, p string) string {
	if len(p) == 0 || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func (bp *BatchParameters) applyDefaults() {
	if bp.Diameter == 0 {
		bp.Diameter = DefaultDiameter
	}
	if bp.Density == 0 {
		bp.Density = DefaultDensity
	}
	if bp.Viscosity == 0 {
		bp.Viscosity = DefaultViscosity
	}
	if bp.ConvergenceThreshold == 0 {
		bp.ConvergenceThreshold = DefaultConvergenceThreshold
	}
}

func (bp *BatchParameters) Validate() (err error) {
	if err = bp.RunConfig().Validate(); err != nil {
		return
	}
	switch {
	case len(bp.Template) == 0:
		return fmt.Errorf("no Template given")
	case len(bp.Meshes) == 0:
		return fmt.Errorf("no Meshes given")
	case len(bp.Reynolds) == 0:
		return fmt.Errorf("no Reynolds numbers given")
	}
	for _, Re := range bp.Reynolds {
		if Re < 0 {
			return fmt.Errorf("negative Reynolds number %g", Re)
		}
	}
	return types.CheckCaseNames(bp.MeshSpecs(), bp.Plan())
}

func (bp *BatchParameters) RunConfig() types.RunConfig {
	return types.RunConfig{
		Diameter:             bp.Diameter,
		Density:              bp.Density,
		Viscosity:            bp.Viscosity,
		ConvergenceThreshold: bp.ConvergenceThreshold,
	}
}

func (bp *BatchParameters) MeshSpecs() (meshes []types.MeshSpec) {
	meshes = make([]types.MeshSpec, len(bp.Meshes))
	for i, m := range bp.Meshes {
		meshes[i] = types.NewMeshSpec(m)
	}
	return
}

func (bp *BatchParameters) Plan() types.SweepPlan {
	plan := make(types.SweepPlan, len(bp.Reynolds))
	copy(plan, bp.Reynolds)
	return plan
}

func (bp *BatchParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", bp.Title)
	fmt.Printf("%12.9f\t= Diameter\n", bp.Diameter)
	fmt.Printf("%12.4f\t= Density\n", bp.Density)
	fmt.Printf("%12.6f\t= Viscosity\n", bp.Viscosity)
	fmt.Printf("%12.4g\t= Convergence Threshold\n", bp.ConvergenceThreshold)
	fmt.Printf("[%s]\t= Template\n", bp.Template)
	for _, m := range bp.Meshes {
		fmt.Printf("[%s]\t= Mesh\n", m)
	}
	fmt.Printf("%v\t= Reynolds\n", bp.Reynolds)
}

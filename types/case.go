package types

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Longest first, so "pipe.msh.gz" loses both suffixes
var MeshExtensions = []string{".msh.gz", ".msh.h5", ".cas.gz", ".cas.h5", ".msh", ".cas"}

/*
RunConfig holds the fluid and geometry constants of a batch. It is built once when the
batch starts and handed by value to every component.
*/
type RunConfig struct {
	Diameter             float64 // Hydraulic diameter, m
	Density              float64 // kg/m^3
	Viscosity            float64 // Dynamic viscosity, Pa s
	ConvergenceThreshold float64 // Continuity residual below which a case counts as converged
}

func (rc RunConfig) KinematicViscosity() float64 {
	return rc.Viscosity / rc.Density
}

func (rc RunConfig) Validate() (err error) {
	switch {
	case rc.Diameter <= 0:
		err = fmt.Errorf("diameter must be positive, have %g", rc.Diameter)
	case rc.Density <= 0:
		err = fmt.Errorf("density must be positive, have %g", rc.Density)
	case rc.Viscosity <= 0:
		err = fmt.Errorf("viscosity must be positive, have %g", rc.Viscosity)
	case rc.ConvergenceThreshold <= 0:
		err = fmt.Errorf("convergence threshold must be positive, have %g", rc.ConvergenceThreshold)
	}
	return
}

type MeshSpec struct {
	Path string
	Name string
}

func NewMeshSpec(path string) MeshSpec {
	var (
		name = filepath.Base(path)
		low  = strings.ToLower(name)
	)
	for _, ext := range MeshExtensions {
		if strings.HasSuffix(low, ext) && len(name) > len(ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	return MeshSpec{Path: path, Name: name}
}

// SweepPlan is evaluated in insertion order
type SweepPlan []float64

type CaseSpec struct {
	Mesh          MeshSpec
	Re            float64
	Velocity      float64 // Inlet velocity, m/s
	MaxIterations int
}

// FormatRe prints a Reynolds number with the fewest digits that round trip, 50 -> "50"
func FormatRe(re float64) string {
	return strconv.FormatFloat(re, 'f', -1, 64)
}

func FormatVelocity(U float64) string {
	return strconv.FormatFloat(U, 'e', 6, 64)
}

// ReLabel is the directory and file name fragment for a Reynolds number, "Re50"
func ReLabel(re float64) string {
	return "Re" + FormatRe(re)
}

func (cs CaseSpec) ID() string {
	return cs.Mesh.Name + "_" + ReLabel(cs.Re)
}

type CaseResult struct {
	Case             CaseSpec
	ActualIterations int
	FinalResidual    float64
	HasResidual      bool
	Status           Status
	Elapsed          time.Duration
	Transcript       string
}

func (cr CaseResult) ID() string {
	return cr.Case.ID()
}

/*
CheckCaseNames rejects batches in which two cases would share a results directory, a
journal name or a ledger Case column. Mesh names and Re labels must each be unique.
*/
func CheckCaseNames(meshes []MeshSpec, plan SweepPlan) (err error) {
	var (
		names  = make(map[string]string, len(meshes))
		labels = make(map[string]float64, len(plan))
	)
	for _, m := range meshes {
		if prev, ok := names[m.Name]; ok {
			return fmt.Errorf("meshes %s and %s share the case name %q", prev, m.Path, m.Name)
		}
		names[m.Name] = m.Path
	}
	for _, Re := range plan {
		lbl := ReLabel(Re)
		if _, ok := labels[lbl]; ok {
			return fmt.Errorf("repeated Reynolds label %s from %g", lbl, Re)
		}
		labels[lbl] = Re
	}
	return
}

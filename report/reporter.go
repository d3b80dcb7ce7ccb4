package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/notargets/gosweep/ledger"
	"github.com/notargets/gosweep/types"
)

const rule = "=================================================================="

// Reporter narrates a batch on the operator console
type Reporter struct {
	W io.Writer
}

func New(w io.Writer) *Reporter {
	return &Reporter{W: w}
}

func (r *Reporter) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.W, format, args...)
}

func (r *Reporter) Banner(title string, rc types.RunConfig, plan types.SweepPlan, meshes []types.MeshSpec) {
	res := make([]string, len(plan))
	for i, Re := range plan {
		res[i] = types.FormatRe(Re)
	}
	r.printf("%s\n", rule)
	if len(title) != 0 {
		r.printf("\"%s\"\n", title)
	}
	r.printf("%12.9f\t= Diameter (m)\n", rc.Diameter)
	r.printf("%12.4f\t= Density (kg/m^3)\n", rc.Density)
	r.printf("%12.6f\t= Viscosity (Pa s)\n", rc.Viscosity)
	r.printf("%12.4e\t= Kinematic Viscosity (m^2/s)\n", rc.KinematicViscosity())
	r.printf("%12.4g\t= Convergence Threshold\n", rc.ConvergenceThreshold)
	r.printf("Reynolds numbers: [%s]\n", strings.Join(res, ", "))
	r.printf("Meshes: %d, Cases: %d\n", len(meshes), len(meshes)*len(plan))
	r.printf("%s\n", rule)
}

func (r *Reporter) MeshSkipped(mesh types.MeshSpec, cases int) {
	r.printf("\nWARNING: mesh file [%s] not found, skipping %d cases for %s\n", mesh.Path, cases, mesh.Name)
}

func (r *Reporter) CaseStart(index, total int, cs types.CaseSpec) {
	r.printf("\n[%d/%d] Mesh: %s  Re = %s\n", index, total, cs.Mesh.Name, types.FormatRe(cs.Re))
	r.printf("        U = %s m/s, Max Iterations = %d\n", types.FormatVelocity(cs.Velocity), cs.MaxIterations)
}

func (r *Reporter) CaseDone(cr types.CaseResult) {
	elapsed := cr.Elapsed.Round(time.Second)
	switch cr.Status {
	case types.CONVERGED:
		r.printf("  -> CONVERGED in %d iterations (residual %g, %v)\n", cr.ActualIterations, cr.FinalResidual, elapsed)
	case types.NOT_CONVERGED:
		r.printf("  -> NOT CONVERGED after %d iterations, residual %g (%v)\n", cr.ActualIterations, cr.FinalResidual, elapsed)
	case types.PARSE_ERROR:
		r.printf("  -> PARSE ERROR, no iteration record in %s\n", cr.Transcript)
	case types.FAILED:
		r.printf("  -> FAILED, see %s\n", cr.Transcript)
	}
}

type Totals struct {
	Total, Converged, NotConverged, Failed int
	MeanSeconds, MaxSeconds               float64
}

func Tally(rl *ledger.RunLedger) (t Totals) {
	results := rl.Results()
	t.Total = len(results)
	t.Converged = len(rl.Converged())
	t.NotConverged = len(rl.NotConverged())
	t.Failed = len(rl.Failed())
	if t.Total == 0 {
		return
	}
	secs := make([]float64, t.Total)
	for i, cr := range results {
		secs[i] = cr.Elapsed.Seconds()
	}
	t.MeanSeconds = stat.Mean(secs, nil)
	t.MaxSeconds = floats.Max(secs)
	return
}

func (r *Reporter) Summary(rl *ledger.RunLedger) {
	t := Tally(rl)
	r.printf("\n%s\n", rule)
	r.printf("Batch Summary\n")
	r.printf("%s\n", rule)
	r.printf("Total cases:     %d\n", t.Total)
	r.printf("Converged:       %d\n", t.Converged)
	r.printf("Not converged:   %d\n", t.NotConverged)
	r.printf("Failed:          %d\n", t.Failed)
	if t.Total != 0 {
		r.printf("Case time:       mean %.1fs, max %.1fs\n", t.MeanSeconds, t.MaxSeconds)
	}
	if !rl.Finished.IsZero() && !rl.Started.IsZero() {
		r.printf("Batch time:      %v\n", rl.Finished.Sub(rl.Started).Round(time.Second))
	}
	r.list("Not converged cases", rl.NotConverged())
	r.list("Failed cases", rl.Failed())
	if len(rl.Path) != 0 {
		r.printf("\nResults ledger: %s\n", rl.Path)
	}
}

func (r *Reporter) list(heading string, crs []types.CaseResult) {
	if len(crs) == 0 {
		return
	}
	r.printf("\n%s:\n", heading)
	for _, cr := range crs {
		r.printf("  - %s\n", cr.ID())
	}
}

package physics

import (
	"github.com/notargets/gosweep/types"
)

// Velocity solves Re = U*D/nu for the inlet velocity U
func Velocity(Re, nu, D float64) float64 {
	return Re * nu / D
}

/*
IterationBudget is the solver iteration limit for a Reynolds number. Higher Re flows take
longer to settle, the budget grows in steps of 500 iterations:

	     Re <= 500  -> 1000
	500 < Re <= 1000 -> 1500
	1000 < Re <= 1500 -> 2000
	1500 < Re         -> 2500
*/
func IterationBudget(Re float64) (iters int) {
	switch {
	case Re <= 500:
		iters = 1000
	case Re <= 1000:
		iters = 1500
	case Re <= 1500:
		iters = 2000
	default:
		iters = 2500
	}
	return
}

func DeriveCase(rc types.RunConfig, mesh types.MeshSpec, Re float64) types.CaseSpec {
	return types.CaseSpec{
		Mesh:          mesh,
		Re:            Re,
		Velocity:      Velocity(Re, rc.KinematicViscosity(), rc.Diameter),
		MaxIterations: IterationBudget(Re),
	}
}

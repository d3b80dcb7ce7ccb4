package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/notargets/gosweep/convergence"
	"github.com/notargets/gosweep/ledger"
	"github.com/notargets/gosweep/physics"
	"github.com/notargets/gosweep/solver"
	"github.com/notargets/gosweep/types"
)

// ErrResultsDir aborts a batch, without a results tree nothing can be recorded
var ErrResultsDir = errors.New("cannot create results directory")

type Runner interface {
	Invoke(ctx context.Context, script, transcript string) solver.Outcome
}

type ScriptWriter interface {
	Write(dir string, cs types.CaseSpec) (path string, err error)
}

type Reporter interface {
	Banner(title string, rc types.RunConfig, plan types.SweepPlan, meshes []types.MeshSpec)
	MeshSkipped(mesh types.MeshSpec, cases int)
	CaseStart(index, total int, cs types.CaseSpec)
	CaseDone(cr types.CaseResult)
	Summary(rl *ledger.RunLedger)
}

type ClassifyFunc func(transcript string, maxIterations int, threshold float64) convergence.Classification

type Options struct {
	Title       string
	Meshes      []types.MeshSpec
	Plan        types.SweepPlan
	ResultsDir  string // Root of results/<mesh>/Re<Re>/console.log and the ledger
	ScriptDir   string // Where generated journals are written
	KeepScripts bool
}

type Orchestrator struct {
	Config   types.RunConfig
	Opts     Options
	Scripts  ScriptWriter
	Runner   Runner
	Reporter Reporter
	Classify ClassifyFunc
	Now      func() time.Time
}

func New(rc types.RunConfig, opts Options, scripts ScriptWriter, runner Runner, rep Reporter) *Orchestrator {
	if len(opts.ResultsDir) == 0 {
		opts.ResultsDir = "results"
	}
	if len(opts.ScriptDir) == 0 {
		opts.ScriptDir = "."
	}
	return &Orchestrator{
		Config:   rc,
		Opts:     opts,
		Scripts:  scripts,
		Runner:   runner,
		Reporter: rep,
		Classify: convergence.Classify,
		Now:      time.Now,
	}
}

// CaseDir is results/<mesh>/Re<Re>, unique per case
func CaseDir(resultsDir string, cs types.CaseSpec) string {
	return filepath.Join(resultsDir, cs.Mesh.Name, types.ReLabel(cs.Re))
}

func TranscriptPath(resultsDir string, cs types.CaseSpec) string {
	return filepath.Join(CaseDir(resultsDir, cs), solver.TranscriptName)
}

/*
Run sweeps every mesh over every Reynolds number, mesh major. A mesh whose file is missing
is skipped whole. Every executed case appends one ledger row before the next one starts,
and no case outcome stops the sweep. The returned error is reserved for conditions that
make recording impossible: results tree or ledger not writable.
*/
func (o *Orchestrator) Run(ctx context.Context) (rl *ledger.RunLedger, err error) {
	var (
		opts  = o.Opts
		total = len(opts.Meshes) * len(opts.Plan)
		index int
	)
	if err = types.CheckCaseNames(opts.Meshes, opts.Plan); err != nil {
		return nil, err
	}
	if err = os.MkdirAll(opts.ResultsDir, 0755); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrResultsDir, opts.ResultsDir, err)
	}
	if rl, err = ledger.Create(filepath.Join(opts.ResultsDir, ledger.FileName), uuid.New(), o.Now()); err != nil {
		return nil, err
	}
	batchLog := log.WithField("batch", rl.ID.String())
	batchLog.WithFields(log.Fields{"meshes": len(opts.Meshes), "cases": total}).Info("batch started")
	o.Reporter.Banner(opts.Title, o.Config, opts.Plan, opts.Meshes)

	for _, mesh := range opts.Meshes {
		if _, serr := os.Stat(mesh.Path); serr != nil {
			batchLog.WithFields(log.Fields{"mesh": mesh.Path}).WithError(serr).Warn("mesh missing, skipping")
			o.Reporter.MeshSkipped(mesh, len(opts.Plan))
			index += len(opts.Plan)
			continue
		}
		for _, Re := range opts.Plan {
			index++
			cs := physics.DeriveCase(o.Config, mesh, Re)
			o.Reporter.CaseStart(index, total, cs)
			var cr types.CaseResult
			if cr, err = o.runCase(ctx, cs); err != nil {
				_ = rl.Close(o.Now())
				return rl, err
			}
			if err = rl.Append(cr); err != nil {
				_ = rl.Close(o.Now())
				return rl, err
			}
			batchLog.WithFields(log.Fields{
				"case":     cr.ID(),
				"status":   cr.Status.String(),
				"iters":    cr.ActualIterations,
				"residual": cr.FinalResidual,
			}).Info("case finished")
			o.Reporter.CaseDone(cr)
		}
	}
	if err = rl.Close(o.Now()); err != nil {
		return rl, err
	}
	batchLog.WithFields(log.Fields{
		"cases":        rl.Len(),
		"failed":       len(rl.Failed()),
		"notConverged": len(rl.NotConverged()),
	}).Info("batch finished")
	o.Reporter.Summary(rl)
	return
}

func (o *Orchestrator) runCase(ctx context.Context, cs types.CaseSpec) (cr types.CaseResult, err error) {
	var (
		caseDir = CaseDir(o.Opts.ResultsDir, cs)
		script  string
		caseLog = log.WithField("case", cs.ID())
	)
	cr = types.CaseResult{
		Case:       cs,
		Status:     types.FAILED,
		Transcript: filepath.Join(caseDir, solver.TranscriptName),
	}
	if err = os.MkdirAll(caseDir, 0755); err != nil {
		return cr, fmt.Errorf("%w %s: %v", ErrResultsDir, caseDir, err)
	}
	if script, err = o.Scripts.Write(o.Opts.ScriptDir, cs); err != nil {
		caseLog.WithError(err).Error("case script not written")
		// Overwrite a transcript left by an earlier batch
		if werr := os.WriteFile(cr.Transcript, []byte(fmt.Sprintf("case script not written: %v\n", err)), 0644); werr != nil {
			caseLog.WithError(werr).Warn("transcript not written")
		}
		return cr, nil
	}
	if !o.Opts.KeepScripts {
		defer func() {
			if rerr := os.Remove(script); rerr != nil {
				caseLog.WithError(rerr).Debug("case script not removed")
			}
		}()
	}

	out := o.Runner.Invoke(ctx, script, cr.Transcript)
	cr.Elapsed = out.Elapsed
	if !out.Success() {
		caseLog.WithFields(log.Fields{"exit": out.ExitCode}).WithError(out.Err).Error("solver failed")
		return cr, nil
	}

	c := o.Classify(cr.Transcript, cs.MaxIterations, o.Config.ConvergenceThreshold)
	cr.Status = c.Status
	cr.ActualIterations = c.ActualIterations
	cr.FinalResidual = c.FinalResidual
	cr.HasResidual = c.HasResidual
	return cr, nil
}

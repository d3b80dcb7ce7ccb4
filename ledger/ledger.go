package ledger

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notargets/gosweep/types"
)

const (
	FileName = "batch_summary.log"
	NA       = "N/A"
)

var Header = []string{"Mesh", "Re", "Velocity", "MaxIters", "ActualIters", "FinalResidual", "Status", "Time"}

/*
RunLedger is the append only record of a batch. Every Append is written through to disk
before it returns, so an interrupted batch keeps the rows of its finished cases.
*/
type RunLedger struct {
	ID       uuid.UUID
	Path     string
	Started  time.Time
	Finished time.Time
	results  []types.CaseResult
	f        *os.File
	w        *csv.Writer
}

// Create truncates path and writes the batch start line and the column header
func Create(path string, id uuid.UUID, started time.Time) (rl *RunLedger, err error) {
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return nil, fmt.Errorf("creating ledger: %w", err)
	}
	rl = &RunLedger{
		ID:      id,
		Path:    path,
		Started: started,
		f:       f,
		w:       csv.NewWriter(f),
	}
	if _, err = fmt.Fprintf(f, "# Batch %s started: %s\n", id, started.Format(time.RFC3339)); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing ledger: %w", err)
	}
	if err = rl.writeRecord(Header); err != nil {
		f.Close()
		return nil, err
	}
	return
}

// New is an in memory ledger, nothing is persisted
func New(id uuid.UUID, started time.Time) *RunLedger {
	return &RunLedger{ID: id, Started: started}
}

func (rl *RunLedger) writeRecord(rec []string) (err error) {
	if rl.w == nil {
		return
	}
	if err = rl.w.Write(rec); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	rl.w.Flush()
	if err = rl.w.Error(); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err = rl.f.Sync(); err != nil {
		return fmt.Errorf("syncing ledger: %w", err)
	}
	return
}

// Append records one finished case. The in memory copy is kept even if the disk write fails.
func (rl *RunLedger) Append(cr types.CaseResult) error {
	rl.results = append(rl.results, cr)
	return rl.writeRecord(Row(cr))
}

// Close writes the batch end line
func (rl *RunLedger) Close(finished time.Time) (err error) {
	rl.Finished = finished
	if rl.f == nil {
		return
	}
	defer func() {
		if cerr := rl.f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		rl.f, rl.w = nil, nil
	}()
	if _, err = fmt.Fprintf(rl.f, "# Batch %s finished: %s\n", rl.ID, finished.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return rl.f.Sync()
}

func Row(cr types.CaseResult) []string {
	var (
		iters    = NA
		residual = NA
	)
	if cr.Status != types.FAILED {
		iters = strconv.Itoa(cr.ActualIterations)
	}
	if cr.HasResidual {
		residual = strconv.FormatFloat(cr.FinalResidual, 'g', -1, 64)
	}
	return []string{
		cr.Case.Mesh.Name,
		types.FormatRe(cr.Case.Re),
		types.FormatVelocity(cr.Case.Velocity),
		strconv.Itoa(cr.Case.MaxIterations),
		iters,
		residual,
		cr.Status.String(),
		strconv.FormatFloat(cr.Elapsed.Seconds(), 'f', 1, 64),
	}
}

func (rl *RunLedger) Len() int { return len(rl.results) }

// Results returns a copy in case order
func (rl *RunLedger) Results() []types.CaseResult {
	out := make([]types.CaseResult, len(rl.results))
	copy(out, rl.results)
	return out
}

func (rl *RunLedger) Filter(keep func(types.CaseResult) bool) (out []types.CaseResult) {
	for _, cr := range rl.results {
		if keep(cr) {
			out = append(out, cr)
		}
	}
	return
}

func (rl *RunLedger) Converged() []types.CaseResult {
	return rl.Filter(func(cr types.CaseResult) bool { return cr.Status == types.CONVERGED })
}

// NotConverged includes parse errors
func (rl *RunLedger) NotConverged() []types.CaseResult {
	return rl.Filter(func(cr types.CaseResult) bool { return cr.Status.IsNotConverged() })
}

func (rl *RunLedger) Failed() []types.CaseResult {
	return rl.Filter(func(cr types.CaseResult) bool { return cr.Status == types.FAILED })
}

// Read loads a ledger file written by Create/Append/Close
func Read(path string) (rl *RunLedger, err error) {
	var (
		f    *os.File
		line int
	)
	if f, err = os.Open(path); err != nil {
		return
	}
	defer f.Close()
	rl = &RunLedger{Path: path}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case len(text) == 0:
			continue
		case strings.HasPrefix(text, "#"):
			if err = rl.parseComment(text); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			continue
		case strings.HasPrefix(text, Header[0]+","):
			continue
		}
		var (
			rec []string
			cr  types.CaseResult
		)
		if rec, err = csv.NewReader(strings.NewReader(text)).Read(); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if cr, err = ParseRow(rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		rl.results = append(rl.results, cr)
	}
	if err = sc.Err(); err != nil {
		return nil, err
	}
	return
}

func (rl *RunLedger) parseComment(text string) (err error) {
	var (
		fields = strings.Fields(text)
		t      time.Time
	)
	// # Batch <id> started: <time>
	if len(fields) != 5 || fields[1] != "Batch" {
		return
	}
	if rl.ID, err = uuid.Parse(fields[2]); err != nil {
		return
	}
	if t, err = time.Parse(time.RFC3339, fields[4]); err != nil {
		return
	}
	switch fields[3] {
	case "started:":
		rl.Started = t
	case "finished:":
		rl.Finished = t
	}
	return
}

func ParseRow(rec []string) (cr types.CaseResult, err error) {
	var secs float64
	if len(rec) != len(Header) {
		return cr, fmt.Errorf("have %d columns, need %d", len(rec), len(Header))
	}
	cr.Case.Mesh = types.MeshSpec{Name: rec[0]}
	if cr.Case.Re, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return
	}
	if cr.Case.Velocity, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return
	}
	if cr.Case.MaxIterations, err = strconv.Atoi(rec[3]); err != nil {
		return
	}
	if rec[4] != NA {
		if cr.ActualIterations, err = strconv.Atoi(rec[4]); err != nil {
			return
		}
	}
	if rec[5] != NA {
		if cr.FinalResidual, err = strconv.ParseFloat(rec[5], 64); err != nil {
			return
		}
		cr.HasResidual = true
	}
	if cr.Status, err = types.ParseStatus(rec[6]); err != nil {
		return
	}
	if secs, err = strconv.ParseFloat(rec[7], 64); err != nil {
		return
	}
	cr.Elapsed = time.Duration(secs * float64(time.Second))
	return
}

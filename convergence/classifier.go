package convergence

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gosweep/types"
)

/*
An iteration record is a residual table row as printed by the solver:

	  iter  continuity  x-velocity  y-velocity  z-velocity     time/iter
	   847  2.3400e-02  1.2055e-05  ...

The first field is the iteration number, the second the continuity residual. Other
columns are not inspected.
*/
var recordRE = regexp.MustCompile(`^\s*(\d+)\s+([-+0-9.eE]+)(?:\s|$)`)

type Record struct {
	Iteration int
	Residual  float64
}

// ParseLine reports whether a line has the shape of an iteration record
func ParseLine(line string) (iter, residual string, ok bool) {
	m := recordRE.FindStringSubmatch(line)
	if m == nil {
		return
	}
	return m[1], m[2], true
}

/*
ParseLastIterationRecord scans r and decodes the last line shaped like an iteration record.
ok is false when no line matched. A matched line whose fields do not decode to an integer
and a finite number returns an error.
*/
func ParseLastIterationRecord(r io.Reader) (rec Record, ok bool, err error) {
	var (
		iterTxt, resTxt string
		sc              = bufio.NewScanner(r)
	)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if it, res, match := ParseLine(sc.Text()); match {
			iterTxt, resTxt, ok = it, res, true
		}
	}
	if err = sc.Err(); err != nil {
		ok = false
		return
	}
	if !ok {
		return
	}
	if rec.Iteration, err = strconv.Atoi(iterTxt); err != nil {
		return rec, false, fmt.Errorf("iteration field %q: %w", iterTxt, err)
	}
	if rec.Residual, err = strconv.ParseFloat(resTxt, 64); err != nil {
		return rec, false, fmt.Errorf("residual field %q: %w", resTxt, err)
	}
	if math.IsNaN(rec.Residual) || math.IsInf(rec.Residual, 0) {
		return rec, false, fmt.Errorf("residual field %q is not finite", resTxt)
	}
	return
}

type Classification struct {
	Status           types.Status
	ActualIterations int
	FinalResidual    float64
	HasResidual      bool
}

// ClassifyRecord compares the final residual against the threshold, strictly below converges
func ClassifyRecord(rec Record, threshold float64) Classification {
	c := Classification{
		Status:           types.NOT_CONVERGED,
		ActualIterations: rec.Iteration,
		FinalResidual:    rec.Residual,
		HasResidual:      true,
	}
	if rec.Residual < threshold {
		c.Status = types.CONVERGED
	}
	return c
}

func ClassifyReader(r io.Reader, threshold float64) (c Classification, err error) {
	var (
		rec Record
		ok  bool
	)
	if rec, ok, err = ParseLastIterationRecord(r); !ok {
		c = Classification{Status: types.PARSE_ERROR}
		return
	}
	return ClassifyRecord(rec, threshold), nil
}

/*
Classify reads a persisted transcript. Unreadable transcripts, transcripts without an
iteration record and malformed records all classify as PARSE_ERROR with zero iterations.
maxIterations is carried for logging only, reaching the budget is not a criterion.
*/
func Classify(transcript string, maxIterations int, threshold float64) (c Classification) {
	var (
		f   *os.File
		err error
	)
	logger := log.WithFields(log.Fields{"transcript": transcript, "maxIters": maxIterations})
	if f, err = os.Open(transcript); err != nil {
		logger.WithError(err).Warn("transcript unreadable")
		return Classification{Status: types.PARSE_ERROR}
	}
	defer f.Close()
	if c, err = ClassifyReader(f, threshold); err != nil {
		logger.WithError(err).Warn("malformed iteration record")
	}
	if c.Status == types.PARSE_ERROR && err == nil {
		logger.Warn("no iteration record found")
	}
	return
}

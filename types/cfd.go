package types

import (
	"fmt"
	"strings"
)

// Status is the terminal state of one executed case
type Status uint8

const (
	CONVERGED Status = iota
	NOT_CONVERGED
	PARSE_ERROR
	FAILED
)

var statusNames = [...]string{
	CONVERGED:     "CONVERGED",
	NOT_CONVERGED: "NOT_CONVERGED",
	PARSE_ERROR:   "PARSE_ERROR",
	FAILED:        "FAILED",
}

var StatusNameMap = map[string]Status{
	"converged":     CONVERGED,
	"not_converged": NOT_CONVERGED,
	"parse_error":   PARSE_ERROR,
	"failed":        FAILED,
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func ParseStatus(label string) (s Status, err error) {
	var ok bool
	if s, ok = StatusNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown case status %q", label)
	}
	return
}

// IsProblem is true for every outcome that is listed in the run summary
func (s Status) IsProblem() bool {
	return s != CONVERGED
}

// IsNotConverged groups parse errors with genuine non-convergence
func (s Status) IsNotConverged() bool {
	return s == NOT_CONVERGED || s == PARSE_ERROR
}

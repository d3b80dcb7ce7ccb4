package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBinary  = "fluent"
	DefaultThreads = 4
	// 3D, double precision
	Version = "3ddp"
)

// TranscriptName is the per case console log inside results/<mesh>/Re<Re>/
const TranscriptName = "console.log"

type Invoker struct {
	Binary  string
	Threads int
	Console io.Writer // Live echo of the solver output, usually os.Stdout
	Env     []string  // Added to the inherited environment
}

func NewInvoker(binary string, threads int, console io.Writer) *Invoker {
	if len(binary) == 0 {
		binary = DefaultBinary
	}
	if threads <= 0 {
		threads = DefaultThreads
	}
	if console == nil {
		console = io.Discard
	}
	return &Invoker{
		Binary:  binary,
		Threads: threads,
		Console: console,
	}
}

// LoadEnvFile adds the KEY=value pairs of a dotenv file to the solver environment
func (iv *Invoker) LoadEnvFile(path string) (err error) {
	var vars map[string]string
	if vars, err = godotenv.Read(path); err != nil {
		return fmt.Errorf("reading solver environment %s: %w", path, err)
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		iv.Env = append(iv.Env, k+"="+vars[k])
	}
	log.WithFields(log.Fields{"file": path, "vars": len(keys)}).Debug("loaded solver environment")
	return
}

// Args is the batch mode command line: no GUI, fixed thread count, journal driven
func (iv *Invoker) Args(script string) []string {
	return []string{Version, "-g", "-t" + strconv.Itoa(iv.Threads), "-i", script}
}

type Outcome struct {
	ExitCode int
	Elapsed  time.Duration
	Err      error // Launch failure or abnormal termination
}

// Success means the solver started and exited with status zero
func (o Outcome) Success() bool {
	return o.Err == nil && o.ExitCode == 0
}

/*
Invoke runs the solver on one journal and blocks until it exits. The combined stdout and
stderr of the solver is teed to the console and to the transcript file, which is
truncated first. A solver that cannot be launched is reported the same way as one that
exits non zero, the launch error is written into the transcript.
*/
func (iv *Invoker) Invoke(ctx context.Context, script, transcript string) (out Outcome) {
	var (
		f   *os.File
		err error
	)
	out.ExitCode = -1
	if err = os.MkdirAll(filepath.Dir(transcript), 0755); err != nil {
		out.Err = fmt.Errorf("creating transcript directory: %w", err)
		return
	}
	if f, err = os.Create(transcript); err != nil {
		out.Err = fmt.Errorf("creating transcript: %w", err)
		return
	}
	defer f.Close()
	var tee io.Writer = f
	if iv.Console != nil {
		tee = io.MultiWriter(iv.Console, f)
	}

	cmd := exec.CommandContext(ctx, iv.Binary, iv.Args(script)...)
	cmd.Stdout = tee
	cmd.Stderr = tee
	if len(iv.Env) != 0 {
		cmd.Env = append(os.Environ(), iv.Env...)
	}

	start := time.Now()
	err = cmd.Run()
	out.Elapsed = time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.ExitCode = 0
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		out.Err = fmt.Errorf("launching %s: %w", iv.Binary, err)
		_, _ = fmt.Fprintf(tee, "%v\n", out.Err)
	}
	log.WithFields(log.Fields{
		"script":  script,
		"exit":    out.ExitCode,
		"elapsed": out.Elapsed.Round(time.Millisecond),
	}).Debug("solver finished")
	return
}

package search

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Output is what a finished engine process left behind.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Elapsed  time.Duration
}

// Executor runs an external program to completion. It returns an error only
// when the program could not be started; a non-zero exit is reported through
// Output.ExitCode.
type Executor interface {
	Run(ctx context.Context, name string, args []string) (*Output, error)
}

// ProcessExecutor spawns real processes through os/exec. Program names
// without a path separator are resolved through PATH.
type ProcessExecutor struct {
	// Dir is the working directory of spawned processes; empty means the
	// current directory.
	Dir string
}

// NewProcessExecutor creates an executor running in the current directory.
func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{}
}

func (x *ProcessExecutor) Run(ctx context.Context, name string, args []string) (*Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = x.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	err := cmd.Wait()
	out := &Output{
		ExitCode: 0,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Elapsed:  time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// I/O failure while copying output; report it as a failed run
			out.ExitCode = -1
			if len(out.Stderr) == 0 {
				out.Stderr = []byte(err.Error())
			}
			return out, nil
		}
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	return out, nil
}

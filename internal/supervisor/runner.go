// Package supervisor spawns the capture pipeline as a subordinate process
// and relays its line-oriented log output to the interface layer.
package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// Line is one log line read from the subordinate process.
type Line struct {
	Stream string // "stdout" or "stderr"
	Text   string
}

// ExitStatus reports how the subordinate process ended.
type ExitStatus struct {
	Code int
	Err  error
}

// Process is a running capture pipeline. Lines carries both streams; lines
// from a single stream preserve their emission order, interleaving between
// the two streams is not ordered. Done delivers the exit status after Lines
// is closed.
type Process struct {
	Lines <-chan Line
	Done  <-chan ExitStatus
}

// Spawn starts the pipeline binary with the given environment overrides
// layered on top of the current environment. One reader goroutine per
// stream pushes lines onto the shared channel; the interface layer drains
// it from a single loop.
func Spawn(ctx context.Context, command string, env map[string]string) (*Process, error) {
	cmd := exec.CommandContext(ctx, command)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	lines := make(chan Line, 256)
	done := make(chan ExitStatus, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			lines <- Line{Stream: "stdout", Text: scanner.Text()}
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			lines <- Line{Stream: "stderr", Text: scanner.Text()}
		}
	}()

	go func() {
		wg.Wait()
		close(lines)
		err := cmd.Wait()
		code := 0
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else if err != nil {
			code = -1
		}
		done <- ExitStatus{Code: code, Err: err}
	}()

	return &Process{Lines: lines, Done: done}, nil
}

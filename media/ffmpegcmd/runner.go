package ffmpegcmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes a command and returns its captured stdout/stderr. The
// default runner spawns the binary and waits; callers can inject a fake for
// tests.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

// DefaultRunner spawns the process, waits for completion, and captures
// stdout/stderr without streaming.
var DefaultRunner Runner = execRunner{}

func (execRunner) Run(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s %v: %w: %s", name, args, err, stderr.String())
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

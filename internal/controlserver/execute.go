package controlserver

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

type executeRequest struct {
	Command string `json:"command"`
}

type executeResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// runShell runs a diagnostic command through the shell on the driver's host.
// The command's own exit status is part of the result, not a failure; only a
// launch-level problem yields a synthetic exit code 1 with empty stdout.
func runShell(ctx context.Context, command string) executeResult {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := executeResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return executeResult{Stderr: err.Error(), ExitCode: 1}
		}
	}

	return result
}

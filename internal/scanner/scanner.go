package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Scanner is implemented by each fingerprint section.
type Scanner interface {
	// Name returns the section key in the fingerprint document (e.g., "Cpu Info").
	Name() string
	// Scan collects the section using the provided CommandRunner. Failures are
	// reported through the Outcome, never returned.
	Scan(ctx context.Context, runner CommandRunner) Outcome
}

// CommandRunner abstracts command execution for local, nsenter and SSH hosts.
// Run returns stdout; a non-zero exit is an error carrying stderr.
type CommandRunner interface {
	Run(ctx context.Context, cmd string) ([]byte, error)
}

// LocalRunner executes commands on the local host.
type LocalRunner struct {
	// Nsenter runs commands in the mount namespace of PID 1, for use from a
	// privileged Kubernetes DaemonSet pod.
	Nsenter bool
}

// Run executes a command via /bin/sh, or via nsenter when enabled.
func (r LocalRunner) Run(ctx context.Context, command string) ([]byte, error) {
	var cmd *exec.Cmd
	if r.Nsenter {
		cmd = exec.CommandContext(ctx, "nsenter", "--target", "1", "--mount", "--", "sh", "-c", command)
	} else {
		cmd = exec.CommandContext(ctx, "/bin/sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("command %q failed: %w (stderr: %s)", command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// FileExists reports whether path is a regular file on the runner's host.
func FileExists(ctx context.Context, runner CommandRunner, path string) bool {
	_, err := runner.Run(ctx, "test -f "+shellQuote(path))
	return err == nil
}

// DirExists reports whether path is a directory on the runner's host.
func DirExists(ctx context.Context, runner CommandRunner, path string) bool {
	_, err := runner.Run(ctx, "test -d "+shellQuote(path))
	return err == nil
}

// ReadFile returns the trimmed contents of path on the runner's host.
func ReadFile(ctx context.Context, runner CommandRunner, path string) (string, error) {
	out, err := runner.Run(ctx, "cat "+shellQuote(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return trimOutput(out), nil
}

// ListDir returns the entry names of a directory on the runner's host.
func ListDir(ctx context.Context, runner CommandRunner, path string) ([]string, error) {
	out, err := runner.Run(ctx, "ls -1 "+shellQuote(path))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

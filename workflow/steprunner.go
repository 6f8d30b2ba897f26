// ABOUTME: Executes one pipeline step as a subprocess, capturing output to a log file.
// ABOUTME: Kills the whole process group on cancellation and parses the step's completion count.
package workflow

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// countPattern matches the completion-count line each step prints as its last
// act, e.g. "3 videos extracted", "2 images converted", "5 images described".
var countPattern = regexp.MustCompile(`^(\d+) (?:videos extracted|images converted|images described|entries rendered)$`)

// lastLineCount is how many trailing output lines are retained for error reporting.
const lastLineCount = 10

// StepResult reports a finished step subprocess back to the orchestrator.
type StepResult struct {
	Items     int      // item count parsed from the step's completion message
	LogPath   string   // where the subprocess output was captured
	LastLines []string // trailing output lines, surfaced on failure
}

// StepRunner launches step subprocesses. Binary is the executable to invoke
// (normally this program itself); Env, when nil, inherits the parent
// environment.
type StepRunner struct {
	Binary string
	Dir    string // working directory for the subprocess; empty = inherit
	Env    []string
}

// Run executes a single step with the given arguments, streaming combined
// output into logPath. It blocks until the subprocess exits. On a non-zero
// exit the returned error wraps the exit code and the result carries the last
// output lines for the orchestrator to log.
func (sr *StepRunner) Run(ctx context.Context, step Step, args []string, logPath string) (*StepResult, error) {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open step log: %w", err)
	}
	defer logFile.Close()

	cmd := exec.CommandContext(ctx, sr.Binary, args...)
	cmd.Dir = sr.Dir
	if sr.Env != nil {
		cmd.Env = sr.Env
	} else {
		cmd.Env = os.Environ()
	}

	// Run the step in its own process group so cancellation kills any children
	// it spawned (ffmpeg, converters).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		killProcessGroup(cmd)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = 3 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start step %q: %w", step, err)
	}

	result := &StepResult{Items: -1, LogPath: logPath}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(logFile, line)

		if m := countPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			n, convErr := strconv.Atoi(m[1])
			if convErr == nil {
				result.Items = n
			}
		}

		result.LastLines = append(result.LastLines, line)
		if len(result.LastLines) > lastLineCount {
			result.LastLines = result.LastLines[1:]
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if waitErr != nil {
		return result, fmt.Errorf("step %q exited with code %d", step, extractExitCode(waitErr))
	}
	if scanErr != nil && scanErr != io.EOF {
		return result, fmt.Errorf("reading step %q output: %w", step, scanErr)
	}
	return result, nil
}

// extractExitCode pulls the integer exit code from an *exec.ExitError,
// defaulting to 1 if the type doesn't match.
func extractExitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return 1
}

// killProcessGroup sends SIGKILL to the entire process group of the command.
// This ensures child processes spawned by the step are also terminated.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
	}
}

package validate

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// Runner executes configured validation commands and classifies pass/fail by
// exit code.
type Runner interface {
	// RunAll runs every configured command to completion in canonical order
	// (format, lint, test, build, then any extras alphabetically). Commands
	// with an empty configured value are skipped, not failed.
	RunAll(commands map[string]string) (*models.ValidationSummary, error)
}

type shellRunner struct {
	dir string
}

// NewRunner creates a Runner that executes commands with the working
// directory set to dir (the project root).
func NewRunner(dir string) Runner {
	return &shellRunner{dir: dir}
}

// commandOrder returns the configured command names in execution order.
func commandOrder(commands map[string]string) []string {
	var names []string
	known := make(map[string]bool)
	for _, name := range models.ValidationOrder {
		known[name] = true
		if cmd, ok := commands[name]; ok && strings.TrimSpace(cmd) != "" {
			names = append(names, name)
		}
	}
	var extras []string
	for name, cmd := range commands {
		if !known[name] && strings.TrimSpace(cmd) != "" {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(names, extras...)
}

// RunAll executes each configured command sequentially, capturing combined
// stdout+stderr. A command passes when it exits zero. No timeout is applied;
// commands run to completion or die with the parent process.
func (r *shellRunner) RunAll(commands map[string]string) (*models.ValidationSummary, error) {
	summary := &models.ValidationSummary{Passed: true}
	var all strings.Builder

	for _, name := range commandOrder(commands) {
		output, exitCode, err := r.run(commands[name])
		if err != nil {
			return nil, fmt.Errorf("running %s validation: %w", name, err)
		}
		passed := exitCode == 0
		summary.Results = append(summary.Results, models.CommandResult{
			Command: name,
			Passed:  passed,
			Output:  output,
		})
		if !passed {
			summary.Passed = false
			summary.FailedChecks = append(summary.FailedChecks, name)
		}
		fmt.Fprintf(&all, "=== %s ===\n%s\n", name, output)
	}

	summary.AllOutput = all.String()
	return summary, nil
}

// run executes one shell command line, returning its combined output and
// exit code. A non-zero exit is not an error; failure to spawn is.
func (r *shellRunner) run(command string) (string, int, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	cmd.Dir = r.dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return buf.String(), exitErr.ExitCode(), nil
		}
		return buf.String(), -1, fmt.Errorf("spawning %q: %w", command, err)
	}
	return buf.String(), 0, nil
}

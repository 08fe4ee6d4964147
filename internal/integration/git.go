// Package integration wraps the external tools TaskFlow shells out to,
// currently git.
package integration

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// GitClient defines the git operations the workflow needs. All operations
// run against the repository at the configured directory.
type GitClient interface {
	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch() (string, error)
	// EnsureBranch checks out name, creating it from the current HEAD when
	// it does not exist yet. Already being on the branch is a no-op.
	EnsureBranch(name string) error
	// Commit stages all changes and commits them with the given message.
	Commit(message string) error
}

type gitClient struct {
	dir string
}

// NewGitClient creates a GitClient operating on the repository at dir.
func NewGitClient(dir string) GitClient {
	return &gitClient{dir: dir}
}

// run executes a git subcommand, returning trimmed combined output. A
// non-zero exit is an error carrying the output for context.
func (g *gitClient) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(buf.String()))
	}
	return strings.TrimSpace(buf.String()), nil
}

func (g *gitClient) CurrentBranch() (string, error) {
	branch, err := g.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolving current branch: %w", err)
	}
	return branch, nil
}

func (g *gitClient) EnsureBranch(name string) error {
	current, err := g.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return nil
	}

	// Existing branch: plain checkout. Missing branch: create from HEAD.
	if _, err := g.run("rev-parse", "--verify", "refs/heads/"+name); err == nil {
		if _, err := g.run("checkout", name); err != nil {
			return fmt.Errorf("checking out branch %s: %w", name, err)
		}
		return nil
	}
	if _, err := g.run("checkout", "-b", name); err != nil {
		return fmt.Errorf("creating branch %s: %w", name, err)
	}
	return nil
}

func (g *gitClient) Commit(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message must not be empty")
	}
	if _, err := g.run("add", "-A"); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	if _, err := g.run("commit", "-m", message); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

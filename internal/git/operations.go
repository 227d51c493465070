// Package git reads the revision of the repository that holds the stubs, so
// saved runs record which stubs they checked.
package git

import (
	"os/exec"
	"strings"
)

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// CurrentBranch returns the current branch name.
	// For detached HEAD, returns "detached-{short-hash}".
	// Returns "" outside a repository.
	CurrentBranch(dir string) string

	// HeadRevision returns the full hash of HEAD, or "" outside a repository.
	HeadRevision(dir string) string

	// IsDirty reports whether the worktree has uncommitted changes.
	IsDirty(dir string) bool
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func (g *gitOps) CurrentBranch(dir string) string {
	branch, err := run(dir, "branch", "--show-current")
	if err == nil && branch != "" {
		return branch
	}

	// Might be detached HEAD
	short, err := run(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return ""
	}
	return "detached-" + short
}

func (g *gitOps) HeadRevision(dir string) string {
	rev, err := run(dir, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return rev
}

func (g *gitOps) IsDirty(dir string) bool {
	status, err := run(dir, "status", "--porcelain")
	return err == nil && status != ""
}

// Revision describes dir for a saved run: the HEAD hash with a "-dirty"
// suffix when there are local changes, and the branch.
func Revision(ops Operations, dir string) (revision, branch string) {
	revision = ops.HeadRevision(dir)
	if revision != "" && ops.IsDirty(dir) {
		revision += "-dirty"
	}
	return revision, ops.CurrentBranch(dir)
}

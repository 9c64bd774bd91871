// Package vcs answers one question for the upgrade flow: does the project's
// working tree carry uncommitted changes? Anything but a clean git checkout
// is reported, and the caller decides whether to proceed.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ragsmith/ragsmith/internal/messages"
)

// Status classifies the project's version-control state.
type Status int

const (
	// StatusNoRepository means the project root is not inside a git work tree,
	// or git is not installed at all.
	StatusNoRepository Status = iota
	// StatusClean means the work tree has no uncommitted changes.
	StatusClean
	// StatusDirty means uncommitted changes exist.
	StatusDirty
)

const statusTimeout = 15 * time.Second

var lookPathFn = exec.LookPath

// Check reports the version-control status of root. A missing git binary or
// a directory outside any repository both map to StatusNoRepository; only a
// genuinely failing git invocation returns an error.
func Check(ctx context.Context, root string) (Status, error) {
	if _, err := lookPathFn("git"); err != nil {
		return StatusNoRepository, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", "status", "--porcelain")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if isNotARepository(stderr.String()) {
			return StatusNoRepository, nil
		}
		return StatusNoRepository, fmt.Errorf(messages.VCSStatusFailedFmt, err, strings.TrimSpace(stderr.String()))
	}
	if strings.TrimSpace(stdout.String()) == "" {
		return StatusClean, nil
	}
	return StatusDirty, nil
}

func isNotARepository(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "not a git repository")
}

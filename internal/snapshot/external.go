package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/selection"
)

const (
	// EnvRunner overrides the package runner used to execute published
	// versions, e.g. RAGSMITH_RUNNER="pnpm dlx".
	EnvRunner = "RAGSMITH_RUNNER"

	publishedPackage = "ragsmith"
	// runnerTimeout bounds one published-version invocation, including the
	// runner's own package download.
	runnerTimeout = 10 * time.Minute
)

var lookPathFn = exec.LookPath

// ExternalProvider reconstructs historical snapshots by executing a
// published package version through a package runner in a scratch directory.
type ExternalProvider struct{}

// runnerCandidates returns the ordered runner command lines to try: the
// environment override first, then bunx, then npx.
func runnerCandidates(getenv func(string) string) [][]string {
	candidates := make([][]string, 0, 3)
	if override := strings.TrimSpace(getenv(EnvRunner)); override != "" {
		candidates = append(candidates, strings.Fields(override))
	}
	candidates = append(candidates, []string{"bunx"}, []string{"npx", "--yes"})
	return candidates
}

// Produce runs `<runner> ragsmith@<version> init <flags>` against a scratch
// directory and collects the produced file set. On an exit that looks like
// an unsupported flag it retries once with the newer-only flags stripped.
func (ExternalProvider) Produce(ctx context.Context, version string, sel selection.Selection) (Snapshot, error) {
	scratch, cleanup, err := newScratchDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	runner, err := resolveRunner(os.Getenv)
	if err != nil {
		return nil, err
	}

	output, err := runPublished(ctx, scratch, runner, version, sel.Flags(true))
	if err != nil {
		if !looksLikeUnsupportedFlag(output) {
			return nil, fmt.Errorf(messages.SnapshotRunnerFailedFmt, strings.Join(runner, " "), version, err, output)
		}
		// Older published versions predate some flags; retry once without them.
		output, err = runPublished(ctx, scratch, runner, version, sel.Flags(false))
		if err != nil {
			return nil, fmt.Errorf(messages.SnapshotRunnerFailedAfterRetryFmt, strings.Join(runner, " "), version, err, output)
		}
	}
	return collect(scratch, sel)
}

// resolveRunner returns the first candidate whose executable is on PATH,
// or an error naming every candidate tried.
func resolveRunner(getenv func(string) string) ([]string, error) {
	tried := make([]string, 0, 3)
	for _, candidate := range runnerCandidates(getenv) {
		if len(candidate) == 0 {
			continue
		}
		if _, err := lookPathFn(candidate[0]); err == nil {
			return candidate, nil
		}
		tried = append(tried, strings.Join(candidate, " "))
	}
	return nil, fmt.Errorf(messages.SnapshotNoRunnerFmt, strings.Join(tried, ", "))
}

func runPublished(ctx context.Context, scratch string, runner []string, version string, flags []string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, runnerTimeout)
	defer cancel()

	args := append([]string(nil), runner[1:]...)
	args = append(args, publishedPackage+"@"+version, "init")
	args = append(args, flags...)
	args = append(args, "--yes", "--no-install")

	cmd := exec.CommandContext(runCtx, runner[0], args...)
	cmd.Dir = scratch
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return combined.String(), fmt.Errorf(messages.SnapshotRunnerTimeoutFmt, runner[0], runnerTimeout)
	}
	return combined.String(), err
}

// looksLikeUnsupportedFlag matches the error shapes common CLI parsers emit
// for flags an older version does not know.
func looksLikeUnsupportedFlag(output string) bool {
	lowered := strings.ToLower(output)
	return strings.Contains(lowered, "unknown flag") ||
		strings.Contains(lowered, "unknown option") ||
		strings.Contains(lowered, "unrecognized option")
}

// Package merge provides the three-way text merge primitive used by upgrade
// planning. The primary path shells out to diff3; a pure heuristic covers
// environments without it. Merge never fails: every input produces a Result.
package merge

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	mergeToolName = "diff3"
	// mergeToolTimeout bounds a single merge-tool invocation. A hung tool is
	// treated the same as a missing one.
	mergeToolTimeout = 30 * time.Second

	labelOurs   = "ours"
	labelBase   = "base"
	labelTheirs = "theirs"
)

// Conflict marker prefixes as written into merged files. The format matches
// version-control conventions so editors and tooling recognize the regions.
const (
	ConflictMarkerOurs   = "<<<<<<<"
	ConflictMarkerSplit  = "======="
	ConflictMarkerTheirs = ">>>>>>>"
)

// Result is the outcome of a three-way merge.
type Result struct {
	Text             string
	HadConflict      bool
	UsedExternalTool bool
}

var lookPathFn = exec.LookPath

// Merge combines ours and theirs against their common ancestor base.
// Exit 0 from the merge tool is a clean merge; exit 1 is a conflict whose
// stdout already carries inline markers. Any other failure falls back to the
// heuristic merge.
func Merge(ctx context.Context, base string, ours string, theirs string) Result {
	toolPath, err := lookPathFn(mergeToolName)
	if err != nil {
		return heuristicMerge(base, ours, theirs)
	}
	result, ok := runMergeTool(ctx, toolPath, base, ours, theirs)
	if !ok {
		return heuristicMerge(base, ours, theirs)
	}
	return result
}

func runMergeTool(ctx context.Context, toolPath string, base string, ours string, theirs string) (Result, bool) {
	dir, err := os.MkdirTemp("", "ragsmith-merge-*")
	if err != nil {
		return Result{}, false
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	oursPath := filepath.Join(dir, labelOurs)
	basePath := filepath.Join(dir, labelBase)
	theirsPath := filepath.Join(dir, labelTheirs)
	for _, entry := range []struct {
		path    string
		content string
	}{
		{oursPath, ours},
		{basePath, base},
		{theirsPath, theirs},
	} {
		if err := os.WriteFile(entry.path, []byte(entry.content), 0o600); err != nil {
			return Result{}, false
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, mergeToolTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, toolPath,
		"-m",
		"-L", labelOurs, "-L", labelBase, "-L", labelTheirs,
		oursPath, basePath, theirsPath,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err = cmd.Run()
	if runCtx.Err() != nil {
		return Result{}, false
	}
	if err == nil {
		return Result{Text: stdout.String(), UsedExternalTool: true}, true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Result{}, false
	}
	if exitErr.ExitCode() == 1 {
		return Result{Text: stdout.String(), HadConflict: true, UsedExternalTool: true}, true
	}
	return Result{}, false
}

// heuristicMerge resolves the trivial cases without a diff and synthesizes a
// whole-file conflict otherwise.
func heuristicMerge(base string, ours string, theirs string) Result {
	switch {
	case ours == theirs:
		return Result{Text: ours}
	case ours == base:
		return Result{Text: theirs}
	case theirs == base:
		return Result{Text: ours}
	}
	return Result{Text: synthesizeConflict(ours, theirs), HadConflict: true}
}

func synthesizeConflict(ours string, theirs string) string {
	var out strings.Builder
	out.WriteString(ConflictMarkerOurs + " " + labelOurs + "\n")
	out.WriteString(ensureTrailingNewline(ours))
	out.WriteString(ConflictMarkerSplit + "\n")
	out.WriteString(ensureTrailingNewline(theirs))
	out.WriteString(ConflictMarkerTheirs + " " + labelTheirs + "\n")
	return out.String()
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}

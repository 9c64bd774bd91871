package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ragsmith/ragsmith/internal/generator"
	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/selection"
)

// CurrentProvider produces snapshots with the in-process generator. It
// renders into a scratch directory and collects the result exactly like the
// external producer, so both sides of a diff are gathered the same way.
type CurrentProvider struct{}

// Produce renders the vendored file set for version into a scratch directory
// and collects it.
func (CurrentProvider) Produce(ctx context.Context, version string, sel selection.Selection) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scratch, cleanup, err := newScratchDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	files, err := generator.Files(sel, version)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		dest := filepath.Join(scratch, filepath.FromSlash(file.RelPath))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf(messages.SnapshotFailedCreateDirFmt, filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, []byte(file.Content), 0o644); err != nil {
			return nil, fmt.Errorf(messages.SnapshotFailedWriteFmt, dest, err)
		}
	}
	return collect(scratch, sel)
}

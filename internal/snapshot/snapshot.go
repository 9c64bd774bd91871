// Package snapshot reconstructs the complete file set a given tool version
// would produce for a module selection. Snapshots are ephemeral: they are
// built in a scratch directory, collected into memory, and the scratch
// directory is deleted on every exit path.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ragsmith/ragsmith/internal/generator"
	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/selection"
)

// Snapshot maps normalized project-relative paths to full file contents.
// It is never persisted; callers discard it after diffing.
type Snapshot map[string]string

// Provider produces the snapshot for one tool version. Implementations are
// the substitution point for tests: planning code accepts any Provider, so
// canned snapshots stand in for subprocess reconstruction.
type Provider interface {
	Produce(ctx context.Context, version string, sel selection.Selection) (Snapshot, error)
}

// Paths returns the snapshot's paths in lexicographic order.
func (s Snapshot) Paths() []string {
	out := make([]string, 0, len(s))
	for path := range s {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// collect walks the scratch directory and gathers every vendored file under
// the selection's install dir plus the generated top-level config file.
func collect(scratchRoot string, sel selection.Selection) (Snapshot, error) {
	out := make(Snapshot)

	installRoot := filepath.Join(scratchRoot, filepath.FromSlash(sel.InstallDir))
	if _, err := os.Stat(installRoot); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(messages.SnapshotMissingInstallDirFmt, sel.InstallDir)
		}
		return nil, fmt.Errorf(messages.SnapshotFailedStatFmt, installRoot, err)
	}
	err := filepath.WalkDir(installRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(scratchRoot, path)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf(messages.SnapshotFailedReadFmt, path, readErr)
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(scratchRoot, generator.ProjectConfigFile)
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf(messages.SnapshotMissingConfigFileFmt, generator.ProjectConfigFile, err)
	}
	out[generator.ProjectConfigFile] = string(configData)
	return out, nil
}

// newScratchDir creates an isolated scratch directory and returns a cleanup
// func that always deletes it.
func newScratchDir() (string, func(), error) {
	dir, err := os.MkdirTemp("", "ragsmith-snapshot-*")
	if err != nil {
		return "", nil, fmt.Errorf(messages.SnapshotFailedScratchDirFmt, err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// Package state persists per-project installation state: the module
// selection, the tool version the project was installed from, and the ledger
// of every file the tool has ever introduced into the project.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/selection"
)

const (
	// DirName is the per-project state directory.
	DirName = ".ragsmith"
	// SchemaVersion is the persisted state schema version.
	SchemaVersion = 1

	stateFileName = "state.json"
	lockFileName  = "state.lock"
)

// ErrStateMissing reports that the project has no persisted state. Callers
// use errors.Is to distinguish an uninstalled project from a read failure.
var ErrStateMissing = errors.New(messages.StateMissing)

// InstalledFrom records the tool version that produced the current on-disk
// file set. It is the default merge base for the next upgrade.
type InstalledFrom struct {
	ToolVersion string `json:"toolVersion"`
}

// Project is the persisted state record.
type Project struct {
	InstallDir        string        `json:"installDir"`
	StorageAdapter    string        `json:"storageAdapter"`
	AliasBase         string        `json:"aliasBase"`
	EmbeddingProvider string        `json:"embeddingProvider"`
	Version           int           `json:"version"`
	InstalledFrom     InstalledFrom `json:"installedFrom"`
	Connectors        []string      `json:"connectors"`
	Extractors        []string      `json:"extractors"`
	Batteries         []string      `json:"batteries"`
	ManagedFiles      []string      `json:"managedFiles"`
}

// Dir returns the state directory under root.
func Dir(root string) string {
	return filepath.Join(root, DirName)
}

// FilePath returns the state file path under root.
func FilePath(root string) string {
	return filepath.Join(Dir(root), stateFileName)
}

// LockPath returns the advisory lock file path under root.
func LockPath(root string) string {
	return filepath.Join(Dir(root), lockFileName)
}

// Load reads and validates the persisted state for root. A missing state
// file yields ErrStateMissing.
func Load(root string, sys System) (*Project, error) {
	if sys == nil {
		return nil, fmt.Errorf(messages.StateSystemRequired)
	}
	path := FilePath(root)
	data, err := sys.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(messages.StateMissingAtFmt, path, ErrStateMissing)
		}
		return nil, fmt.Errorf(messages.StateFailedReadFmt, path, err)
	}
	var project Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf(messages.StateFailedDecodeFmt, path, err)
	}
	if err := project.validate(); err != nil {
		return nil, fmt.Errorf(messages.StateInvalidFmt, path, err)
	}
	return &project, nil
}

// Save persists the state atomically, creating the state directory if needed.
func (p *Project) Save(root string, sys System) error {
	if sys == nil {
		return fmt.Errorf(messages.StateSystemRequired)
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf(messages.StateInvalidFmt, FilePath(root), err)
	}
	p.normalize()
	if err := sys.MkdirAll(Dir(root), 0o755); err != nil {
		return fmt.Errorf(messages.StateFailedCreateDirFmt, Dir(root), err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.StateFailedEncodeFmt, err)
	}
	data = append(data, '\n')
	if err := sys.WriteFileAtomic(FilePath(root), data, 0o644); err != nil {
		return fmt.Errorf(messages.StateFailedWriteFmt, FilePath(root), err)
	}
	return nil
}

// Selection converts the persisted record into a module selection.
func (p *Project) Selection() selection.Selection {
	sel := selection.Selection{
		InstallDir:        p.InstallDir,
		StorageAdapter:    selection.StorageAdapter(p.StorageAdapter),
		AliasBase:         p.AliasBase,
		EmbeddingProvider: selection.EmbeddingProvider(p.EmbeddingProvider),
		Extractors:        append([]string(nil), p.Extractors...),
		Connectors:        append([]string(nil), p.Connectors...),
		Batteries:         append([]string(nil), p.Batteries...),
	}
	sel.Normalize()
	return sel
}

// AddManagedFiles unions paths into the ledger. The ledger only ever grows;
// paths the upstream removes stay tracked so later upgrades can still report
// them.
func (p *Project) AddManagedFiles(paths []string) {
	set := make(map[string]struct{}, len(p.ManagedFiles)+len(paths))
	for _, path := range p.ManagedFiles {
		set[path] = struct{}{}
	}
	for _, path := range paths {
		normalized := filepath.ToSlash(strings.TrimSpace(path))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	p.ManagedFiles = out
}

func (p *Project) validate() error {
	if p.Version != SchemaVersion {
		return fmt.Errorf(messages.StateUnsupportedSchemaFmt, p.Version, SchemaVersion)
	}
	if strings.TrimSpace(p.InstallDir) == "" {
		return fmt.Errorf(messages.StateInstallDirRequired)
	}
	if strings.TrimSpace(p.StorageAdapter) == "" {
		return fmt.Errorf(messages.StateStorageAdapterRequired)
	}
	return nil
}

func (p *Project) normalize() {
	p.AddManagedFiles(nil)
	sort.Strings(p.Connectors)
	sort.Strings(p.Extractors)
	sort.Strings(p.Batteries)
}

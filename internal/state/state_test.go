package state

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func seedProject() *Project {
	return &Project{
		InstallDir:        "src/rag",
		StorageAdapter:    "sqlite",
		AliasBase:         "@/rag",
		EmbeddingProvider: "openai",
		Version:           SchemaVersion,
		InstalledFrom:     InstalledFrom{ToolVersion: "1.2.0"},
		Extractors:        []string{"markdown"},
		ManagedFiles:      []string{"src/rag/index.ts", "ragsmith.toml"},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	project := seedProject()
	if err := project.Save(root, RealSystem{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(root, RealSystem{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.InstalledFrom.ToolVersion != "1.2.0" {
		t.Fatalf("unexpected installedFrom %q", loaded.InstalledFrom.ToolVersion)
	}
	if !reflect.DeepEqual(loaded.ManagedFiles, []string{"ragsmith.toml", "src/rag/index.ts"}) {
		t.Fatalf("ledger not sorted on save: %v", loaded.ManagedFiles)
	}
}

func TestLoadMissingStateIsSentinel(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, RealSystem{})
	if !errors.Is(err, ErrStateMissing) {
		t.Fatalf("expected ErrStateMissing, got %v", err)
	}
}

func TestLoadRejectsMalformedState(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(Dir(root), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(FilePath(root), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(root, RealSystem{}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadRejectsMissingStorageAdapter(t *testing.T) {
	root := t.TempDir()
	project := seedProject()
	if err := project.Save(root, RealSystem{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(FilePath(root))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	mangled := []byte(string(data))
	mangled = []byte(replaceOnce(t, string(mangled), `"storageAdapter": "sqlite"`, `"storageAdapter": ""`))
	if err := os.WriteFile(FilePath(root), mangled, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(root, RealSystem{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestAddManagedFilesIsMonotonic(t *testing.T) {
	project := seedProject()
	before := append([]string(nil), project.ManagedFiles...)
	project.AddManagedFiles([]string{"src/rag/chunker.ts", "src/rag/index.ts", ""})

	got := make(map[string]struct{}, len(project.ManagedFiles))
	for _, path := range project.ManagedFiles {
		got[path] = struct{}{}
	}
	for _, path := range before {
		if _, ok := got[path]; !ok {
			t.Fatalf("ledger lost path %s", path)
		}
	}
	if _, ok := got["src/rag/chunker.ts"]; !ok {
		t.Fatalf("ledger missing new path")
	}
	if len(project.ManagedFiles) != 3 {
		t.Fatalf("unexpected ledger %v", project.ManagedFiles)
	}
}

func TestSelectionNormalizesSets(t *testing.T) {
	project := seedProject()
	project.Extractors = []string{"pdf", "markdown", "pdf"}
	sel := project.Selection()
	if !reflect.DeepEqual(sel.Extractors, []string{"markdown", "pdf"}) {
		t.Fatalf("unexpected extractors %v", sel.Extractors)
	}
}

func TestPathsLiveUnderStateDir(t *testing.T) {
	root := t.TempDir()
	if filepath.Dir(FilePath(root)) != Dir(root) {
		t.Fatalf("state file must live in state dir")
	}
	if filepath.Dir(LockPath(root)) != Dir(root) {
		t.Fatalf("lock file must live in state dir")
	}
}

func replaceOnce(t *testing.T, s string, old string, repl string) string {
	t.Helper()
	idx := strings.Index(s, old)
	if idx < 0 {
		t.Fatalf("substring %q not found", old)
	}
	return s[:idx] + repl + s[idx+len(old):]
}

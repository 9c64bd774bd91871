package snapshot

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/ragsmith/ragsmith/internal/generator"
	"github.com/ragsmith/ragsmith/internal/selection"
	"github.com/ragsmith/ragsmith/internal/testutil"
)

func testSelection() selection.Selection {
	return selection.Selection{
		InstallDir:        "src/rag",
		StorageAdapter:    selection.StorageSQLite,
		AliasBase:         "@/rag",
		EmbeddingProvider: selection.EmbeddingOpenAI,
		Extractors:        []string{"markdown"},
		Batteries:         []string{"cache"},
	}
}

func countScratchDirs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	count := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "ragsmith-snapshot-") {
			count++
		}
	}
	return count
}

func TestCurrentProviderProducesVendoredSet(t *testing.T) {
	snap, err := CurrentProvider{}.Produce(context.Background(), "1.3.0", testSelection())
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	for _, want := range []string{
		"src/rag/index.ts",
		"src/rag/storage/sqlite.ts",
		"src/rag/batteries/cache.ts",
		generator.ProjectConfigFile,
	} {
		if _, ok := snap[want]; !ok {
			t.Fatalf("snapshot missing %s; paths: %v", want, snap.Paths())
		}
	}
}

func TestCurrentProviderIsDeterministic(t *testing.T) {
	first, err := CurrentProvider{}.Produce(context.Background(), "1.3.0", testSelection())
	if err != nil {
		t.Fatalf("produce first: %v", err)
	}
	second, err := CurrentProvider{}.Produce(context.Background(), "1.3.0", testSelection())
	if err != nil {
		t.Fatalf("produce second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must yield byte-identical snapshots")
	}
}

func TestCurrentProviderCleansScratchDir(t *testing.T) {
	before := countScratchDirs(t)
	if _, err := (CurrentProvider{}).Produce(context.Background(), "1.3.0", testSelection()); err != nil {
		t.Fatalf("produce: %v", err)
	}
	if after := countScratchDirs(t); after != before {
		t.Fatalf("scratch dirs leaked: before %d after %d", before, after)
	}
}

func TestCurrentProviderCleansScratchDirOnFailure(t *testing.T) {
	before := countScratchDirs(t)
	bad := testSelection()
	bad.StorageAdapter = "duckdb"
	if _, err := (CurrentProvider{}).Produce(context.Background(), "1.3.0", bad); err == nil {
		t.Fatalf("expected validation error")
	}
	if after := countScratchDirs(t); after != before {
		t.Fatalf("scratch dirs leaked on failure: before %d after %d", before, after)
	}
}

const writeFilesStub = `#!/bin/sh
PATH=/usr/bin:/bin
mkdir -p src/rag
printf 'content for %s\n' "$@" > src/rag/index.ts
printf 'cfg\n' > ragsmith.toml
exit 0
`

func TestExternalProviderPrefersBunx(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "bunx", writeFilesStub)
	t.Setenv("PATH", dir)
	t.Setenv(EnvRunner, "")

	snap, err := ExternalProvider{}.Produce(context.Background(), "1.1.0", testSelection())
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if !strings.Contains(snap["src/rag/index.ts"], "ragsmith@1.1.0") {
		t.Fatalf("runner did not receive versioned package: %q", snap["src/rag/index.ts"])
	}
	if _, ok := snap[generator.ProjectConfigFile]; !ok {
		t.Fatalf("snapshot missing top-level config")
	}
}

func TestExternalProviderFallsBackToNpx(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "npx", writeFilesStub)
	t.Setenv("PATH", dir)
	t.Setenv(EnvRunner, "")

	snap, err := ExternalProvider{}.Produce(context.Background(), "1.1.0", testSelection())
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if !strings.Contains(snap["src/rag/index.ts"], "--yes") {
		t.Fatalf("npx runner must carry --yes: %q", snap["src/rag/index.ts"])
	}
}

func TestExternalProviderHonorsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "myrunner", writeFilesStub)
	t.Setenv("PATH", dir)
	t.Setenv(EnvRunner, "myrunner")

	if _, err := (ExternalProvider{}).Produce(context.Background(), "1.1.0", testSelection()); err != nil {
		t.Fatalf("produce with override: %v", err)
	}
}

func TestExternalProviderNoRunnerListsCandidates(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv(EnvRunner, "")

	_, err := ExternalProvider{}.Produce(context.Background(), "1.1.0", testSelection())
	if err == nil {
		t.Fatalf("expected no-runner error")
	}
	if !strings.Contains(err.Error(), "bunx") || !strings.Contains(err.Error(), "npx") {
		t.Fatalf("error must list candidates tried: %v", err)
	}
}

func TestExternalProviderSurfacesRunnerOutput(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "bunx", "#!/bin/sh\necho 'network unreachable' >&2\nexit 3\n")
	t.Setenv("PATH", dir)
	t.Setenv(EnvRunner, "")

	_, err := ExternalProvider{}.Produce(context.Background(), "1.1.0", testSelection())
	if err == nil {
		t.Fatalf("expected runner failure")
	}
	if !strings.Contains(err.Error(), "network unreachable") {
		t.Fatalf("error must carry captured output: %v", err)
	}
}

func TestExternalProviderRetriesWithoutNewerFlags(t *testing.T) {
	dir := t.TempDir()
	// Simulate an old published version that rejects --battery.
	testutil.WriteScript(t, dir, "bunx", `#!/bin/sh
PATH=/usr/bin:/bin
for arg in "$@"; do
  if [ "$arg" = "--battery" ]; then
    echo "error: unknown option '--battery'" >&2
    exit 1
  fi
done
mkdir -p src/rag
printf 'legacy\n' > src/rag/index.ts
printf 'cfg\n' > ragsmith.toml
exit 0
`)
	t.Setenv("PATH", dir)
	t.Setenv(EnvRunner, "")

	snap, err := ExternalProvider{}.Produce(context.Background(), "0.9.0", testSelection())
	if err != nil {
		t.Fatalf("expected stripped-flag retry to succeed: %v", err)
	}
	if snap["src/rag/index.ts"] != "legacy\n" {
		t.Fatalf("unexpected retry output %q", snap["src/rag/index.ts"])
	}
}

func TestExternalProviderFailsWhenRetryAlsoFails(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScript(t, dir, "bunx", "#!/bin/sh\necho \"unknown option '--storage'\" >&2\nexit 1\n")
	t.Setenv("PATH", dir)
	t.Setenv(EnvRunner, "")

	_, err := ExternalProvider{}.Produce(context.Background(), "0.1.0", testSelection())
	if err == nil {
		t.Fatalf("expected persistent failure")
	}
	if !strings.Contains(err.Error(), "unknown option") {
		t.Fatalf("error must carry captured output: %v", err)
	}
}

func TestExternalProviderCleansScratchDirOnFailure(t *testing.T) {
	before := countScratchDirs(t)
	dir := t.TempDir()
	testutil.WriteStubWithExit(t, dir, "bunx", 2)
	t.Setenv("PATH", dir)
	t.Setenv(EnvRunner, "")

	if _, err := (ExternalProvider{}).Produce(context.Background(), "1.1.0", testSelection()); err == nil {
		t.Fatalf("expected failure")
	}
	if after := countScratchDirs(t); after != before {
		t.Fatalf("scratch dirs leaked on failure: before %d after %d", before, after)
	}
}

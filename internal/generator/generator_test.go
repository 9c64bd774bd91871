package generator

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ragsmith/ragsmith/internal/selection"
)

func testSelection() selection.Selection {
	return selection.Selection{
		InstallDir:        "src/rag",
		StorageAdapter:    selection.StoragePostgres,
		AliasBase:         "@/rag",
		EmbeddingProvider: selection.EmbeddingOpenAI,
		Extractors:        []string{"markdown", "html"},
		Connectors:        []string{"rss"},
		Batteries:         []string{"reranker"},
	}
}

func TestFilesCoversSelectedModules(t *testing.T) {
	files, err := Files(testSelection(), "1.4.0")
	if err != nil {
		t.Fatalf("render files: %v", err)
	}

	byPath := make(map[string]string, len(files))
	for _, file := range files {
		byPath[file.RelPath] = file.Content
	}
	for _, want := range []string{
		"src/rag/index.ts",
		"src/rag/chunker.ts",
		"src/rag/pipeline.ts",
		"src/rag/clients.ts",
		"src/rag/storage/postgres.ts",
		"src/rag/embeddings/openai.ts",
		"src/rag/extractors/markdown.ts",
		"src/rag/extractors/html.ts",
		"src/rag/connectors/rss.ts",
		"src/rag/batteries/reranker.ts",
		ProjectConfigFile,
	} {
		if _, ok := byPath[want]; !ok {
			t.Fatalf("missing rendered file %s (have %d files)", want, len(files))
		}
	}
	if _, ok := byPath["src/rag/storage/sqlite.ts"]; ok {
		t.Fatalf("unselected storage adapter must not be rendered")
	}
}

func TestFilesInsertTypedContext(t *testing.T) {
	files, err := Files(testSelection(), "1.4.0")
	if err != nil {
		t.Fatalf("render files: %v", err)
	}
	for _, file := range files {
		if file.RelPath == "src/rag/index.ts" {
			if !strings.Contains(file.Content, `from "@/rag/storage/postgres"`) {
				t.Fatalf("index.ts missing storage import:\n%s", file.Content)
			}
			if !strings.Contains(file.Content, "ragsmith 1.4.0") {
				t.Fatalf("index.ts missing tool version header:\n%s", file.Content)
			}
		}
		if file.RelPath == ProjectConfigFile {
			if !strings.Contains(file.Content, `version = '1.4.0'`) && !strings.Contains(file.Content, `version = "1.4.0"`) {
				t.Fatalf("config missing version pin:\n%s", file.Content)
			}
			if !strings.Contains(file.Content, "postgres") {
				t.Fatalf("config missing storage module:\n%s", file.Content)
			}
		}
	}
}

func TestFilesAreDeterministic(t *testing.T) {
	first, err := Files(testSelection(), "1.4.0")
	if err != nil {
		t.Fatalf("render files: %v", err)
	}
	shuffled := testSelection()
	shuffled.Extractors = []string{"html", "markdown"}
	second, err := Files(shuffled, "1.4.0")
	if err != nil {
		t.Fatalf("render files: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("renders differ for equal selections")
	}
}

func TestFilesDifferAcrossToolVersions(t *testing.T) {
	v1, err := Files(testSelection(), "1.4.0")
	if err != nil {
		t.Fatalf("render v1: %v", err)
	}
	v2, err := Files(testSelection(), "1.5.0")
	if err != nil {
		t.Fatalf("render v2: %v", err)
	}
	if reflect.DeepEqual(v1, v2) {
		t.Fatalf("expected rendered output to embed the tool version")
	}
}

func TestFilesRejectsInvalidSelection(t *testing.T) {
	sel := testSelection()
	sel.StorageAdapter = "duckdb"
	if _, err := Files(sel, "1.4.0"); err == nil {
		t.Fatalf("expected validation error")
	}
}

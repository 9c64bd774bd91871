// Package deps reconciles the consuming project's package manifest with the
// dependencies the installed module selection requires. Reconciliation is
// additive only: existing entries are never overwritten or removed.
package deps

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/selection"
)

// ManifestFile is the npm manifest of the consuming project.
const ManifestFile = "package.json"

// Kind distinguishes runtime from development dependencies.
type Kind string

// Dependency kinds.
const (
	KindRuntime Kind = "runtime"
	KindDev     Kind = "dev"
)

// Change describes one dependency added during reconciliation.
type Change struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Kind    Kind   `json:"kind"`
}

type requirement struct {
	name    string
	version string
	kind    Kind
}

var storageRequirements = map[selection.StorageAdapter][]requirement{
	selection.StorageSQLite:   {{name: "better-sqlite3", version: "^11.3.0", kind: KindRuntime}},
	selection.StoragePostgres: {{name: "pg", version: "^8.12.0", kind: KindRuntime}, {name: "pgvector", version: "^0.2.0", kind: KindRuntime}},
	selection.StorageQdrant:   {{name: "@qdrant/js-client-rest", version: "^1.11.0", kind: KindRuntime}},
}

var embeddingRequirements = map[selection.EmbeddingProvider][]requirement{
	selection.EmbeddingOpenAI: {{name: "openai", version: "^4.60.0", kind: KindRuntime}},
	selection.EmbeddingOllama: {{name: "ollama", version: "^0.5.9", kind: KindRuntime}},
	selection.EmbeddingVoyage: {{name: "voyageai", version: "^0.0.4", kind: KindRuntime}},
}

var moduleRequirements = map[string][]requirement{
	"html":     {{name: "cheerio", version: "^1.0.0", kind: KindRuntime}},
	"pdf":      {{name: "pdf-parse", version: "^1.1.1", kind: KindRuntime}},
	"docx":     {{name: "mammoth", version: "^1.8.0", kind: KindRuntime}},
	"markdown": nil, // pure string processing, no package needed
	"github":   {{name: "octokit", version: "^4.0.0", kind: KindRuntime}},
	"notion":   {{name: "@notionhq/client", version: "^2.2.15", kind: KindRuntime}},
	"rss":      {{name: "rss-parser", version: "^3.13.0", kind: KindRuntime}},
	"reranker": nil,
	"cache":    nil,
	"evals":    {{name: "vitest", version: "^2.1.0", kind: KindDev}},
}

// Required returns the dependency set the selection needs, sorted by name.
func Required(sel selection.Selection) []Change {
	requirements := make([]requirement, 0, 8)
	requirements = append(requirements, storageRequirements[sel.StorageAdapter]...)
	requirements = append(requirements, embeddingRequirements[sel.EmbeddingProvider]...)
	for _, module := range sel.Extractors {
		requirements = append(requirements, moduleRequirements[module]...)
	}
	for _, module := range sel.Connectors {
		requirements = append(requirements, moduleRequirements[module]...)
	}
	for _, module := range sel.Batteries {
		requirements = append(requirements, moduleRequirements[module]...)
	}

	seen := make(map[string]struct{}, len(requirements))
	out := make([]Change, 0, len(requirements))
	for _, req := range requirements {
		if _, ok := seen[req.name]; ok {
			continue
		}
		seen[req.name] = struct{}{}
		out = append(out, Change{Name: req.name, Version: req.version, Kind: req.kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reconcile reads the manifest under root, adds every required dependency
// whose name is absent from both the runtime and dev maps, and writes the
// manifest back when anything changed. It returns the additions made.
func Reconcile(root string, sel selection.Selection, sys System) ([]Change, error) {
	if sys == nil {
		return nil, fmt.Errorf(messages.DepsSystemRequired)
	}
	path := manifestPath(root)
	data, err := sys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.DepsFailedReadManifestFmt, path, err)
	}

	var manifest map[string]json.RawMessage
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf(messages.DepsFailedDecodeManifestFmt, path, err)
	}
	runtime, err := dependencyMap(manifest, "dependencies")
	if err != nil {
		return nil, fmt.Errorf(messages.DepsFailedDecodeManifestFmt, path, err)
	}
	dev, err := dependencyMap(manifest, "devDependencies")
	if err != nil {
		return nil, fmt.Errorf(messages.DepsFailedDecodeManifestFmt, path, err)
	}

	additions := make([]Change, 0)
	for _, change := range Required(sel) {
		if _, ok := runtime[change.Name]; ok {
			continue
		}
		if _, ok := dev[change.Name]; ok {
			continue
		}
		if change.Kind == KindDev {
			dev[change.Name] = change.Version
		} else {
			runtime[change.Name] = change.Version
		}
		additions = append(additions, change)
	}
	if len(additions) == 0 {
		return additions, nil
	}

	if err := encodeDependencyMap(manifest, "dependencies", runtime); err != nil {
		return nil, err
	}
	if err := encodeDependencyMap(manifest, "devDependencies", dev); err != nil {
		return nil, err
	}
	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf(messages.DepsFailedEncodeManifestFmt, err)
	}
	encoded = append(encoded, '\n')
	if err := sys.WriteFileAtomic(path, encoded, 0o644); err != nil {
		return nil, fmt.Errorf(messages.DepsFailedWriteManifestFmt, path, err)
	}
	return additions, nil
}

func manifestPath(root string) string {
	return filepath.Join(root, ManifestFile)
}

func dependencyMap(manifest map[string]json.RawMessage, key string) (map[string]string, error) {
	raw, ok := manifest[key]
	if !ok {
		return make(map[string]string), nil
	}
	out := make(map[string]string)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeDependencyMap(manifest map[string]json.RawMessage, key string, deps map[string]string) error {
	if len(deps) == 0 {
		if _, existed := manifest[key]; !existed {
			return nil
		}
	}
	encoded, err := json.Marshal(deps)
	if err != nil {
		return fmt.Errorf(messages.DepsFailedEncodeManifestFmt, err)
	}
	manifest[key] = encoded
	return nil
}

// Package generator renders the vendored engine sources for a module
// selection. Templates are structured: every insertion point is a named,
// typed field on Context rather than a comment marker, so a rendered file
// set is fully determined by (tool version, selection).
package generator

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/selection"
)

// ProjectConfigFile is the generated top-level config file name.
const ProjectConfigFile = "ragsmith.toml"

// File is a single rendered output with a slash-separated project-relative path.
type File struct {
	RelPath string
	Content string
}

// Context carries the typed insertion points available to templates.
type Context struct {
	ToolVersion string
	AliasBase   string
	InstallDir  string
	Storage     StorageContext
	Embeddings  EmbeddingsContext
	Extractors  []string
	Connectors  []string
	Batteries   []string
}

// StorageContext describes the selected storage adapter to templates.
type StorageContext struct {
	Name          string
	ClientPackage string
}

// EmbeddingsContext describes the selected embedding provider to templates.
type EmbeddingsContext struct {
	Name         string
	DefaultModel string
	APIKeyEnvVar string
}

var storageContexts = map[selection.StorageAdapter]StorageContext{
	selection.StorageSQLite:   {Name: "sqlite", ClientPackage: "better-sqlite3"},
	selection.StoragePostgres: {Name: "postgres", ClientPackage: "pg"},
	selection.StorageQdrant:   {Name: "qdrant", ClientPackage: "@qdrant/js-client-rest"},
}

var embeddingsContexts = map[selection.EmbeddingProvider]EmbeddingsContext{
	selection.EmbeddingOpenAI: {Name: "openai", DefaultModel: "text-embedding-3-small", APIKeyEnvVar: "OPENAI_API_KEY"},
	selection.EmbeddingOllama: {Name: "ollama", DefaultModel: "nomic-embed-text", APIKeyEnvVar: "OLLAMA_HOST"},
	selection.EmbeddingVoyage: {Name: "voyage", DefaultModel: "voyage-3-lite", APIKeyEnvVar: "VOYAGE_API_KEY"},
}

// Files renders the complete vendored file set plus the top-level config
// file for a selection. Output order is lexicographic by path.
func Files(sel selection.Selection, toolVersion string) ([]File, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	sel.Normalize()

	ctx := Context{
		ToolVersion: toolVersion,
		AliasBase:   sel.AliasBase,
		InstallDir:  sel.InstallDir,
		Storage:     storageContexts[sel.StorageAdapter],
		Embeddings:  embeddingsContexts[sel.EmbeddingProvider],
		Extractors:  sel.Extractors,
		Connectors:  sel.Connectors,
		Batteries:   sel.Batteries,
	}

	out := make([]File, 0, 8+len(sel.Extractors)+len(sel.Connectors)+len(sel.Batteries))
	core := []struct {
		templatePath string
		relPath      string
	}{
		{"engine/index.ts.tmpl", "index.ts"},
		{"engine/chunker.ts.tmpl", "chunker.ts"},
		{"engine/pipeline.ts.tmpl", "pipeline.ts"},
		{"engine/clients.ts.tmpl", "clients.ts"},
		{"storage/" + ctx.Storage.Name + ".ts.tmpl", "storage/" + ctx.Storage.Name + ".ts"},
		{"embeddings/" + ctx.Embeddings.Name + ".ts.tmpl", "embeddings/" + ctx.Embeddings.Name + ".ts"},
	}
	for _, entry := range core {
		rendered, err := render(entry.templatePath, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, File{RelPath: path.Join(sel.InstallDir, entry.relPath), Content: rendered})
	}
	for _, extractor := range sel.Extractors {
		rendered, err := render("extractors/"+extractor+".ts.tmpl", ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, File{RelPath: path.Join(sel.InstallDir, "extractors", extractor+".ts"), Content: rendered})
	}
	for _, connector := range sel.Connectors {
		rendered, err := render("connectors/"+connector+".ts.tmpl", ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, File{RelPath: path.Join(sel.InstallDir, "connectors", connector+".ts"), Content: rendered})
	}
	for _, battery := range sel.Batteries {
		rendered, err := render("batteries/"+battery+".ts.tmpl", ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, File{RelPath: path.Join(sel.InstallDir, "batteries", battery+".ts"), Content: rendered})
	}

	configContent, err := renderProjectConfig(sel, toolVersion)
	if err != nil {
		return nil, err
	}
	out = append(out, File{RelPath: ProjectConfigFile, Content: configContent})

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func render(templatePath string, ctx Context) (string, error) {
	data, err := templatesFS.ReadFile("templates/" + templatePath)
	if err != nil {
		return "", fmt.Errorf(messages.GeneratorMissingTemplateFmt, templatePath, err)
	}
	tmpl, err := template.New(templatePath).Parse(string(data))
	if err != nil {
		return "", fmt.Errorf(messages.GeneratorParseTemplateFmt, templatePath, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf(messages.GeneratorRenderTemplateFmt, templatePath, err)
	}
	return buf.String(), nil
}

type projectConfig struct {
	Engine  projectConfigEngine  `toml:"engine"`
	Modules projectConfigModules `toml:"modules"`
}

type projectConfigEngine struct {
	Version    string `toml:"version"`
	InstallDir string `toml:"install_dir"`
	AliasBase  string `toml:"alias_base"`
}

type projectConfigModules struct {
	Storage    string   `toml:"storage"`
	Embeddings string   `toml:"embeddings"`
	Extractors []string `toml:"extractors"`
	Connectors []string `toml:"connectors"`
	Batteries  []string `toml:"batteries"`
}

func renderProjectConfig(sel selection.Selection, toolVersion string) (string, error) {
	cfg := projectConfig{
		Engine: projectConfigEngine{
			Version:    toolVersion,
			InstallDir: sel.InstallDir,
			AliasBase:  sel.AliasBase,
		},
		Modules: projectConfigModules{
			Storage:    string(sel.StorageAdapter),
			Embeddings: string(sel.EmbeddingProvider),
			Extractors: emptyNotNil(sel.Extractors),
			Connectors: emptyNotNil(sel.Connectors),
			Batteries:  emptyNotNil(sel.Batteries),
		},
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf(messages.GeneratorMarshalConfigFmt, err)
	}
	return string(data), nil
}

func emptyNotNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// Package selection models the set of engine modules installed into a
// project: storage adapter, embedding provider, extractors, connectors, and
// batteries. A Selection plus a tool version fully determines the vendored
// file set.
package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ragsmith/ragsmith/internal/messages"
)

// StorageAdapter identifies the vector storage backend vendored into the project.
type StorageAdapter string

// Supported storage adapters.
const (
	StorageSQLite   StorageAdapter = "sqlite"
	StoragePostgres StorageAdapter = "postgres"
	StorageQdrant   StorageAdapter = "qdrant"
)

// EmbeddingProvider identifies the embedding API client vendored into the project.
type EmbeddingProvider string

// Supported embedding providers.
const (
	EmbeddingOpenAI EmbeddingProvider = "openai"
	EmbeddingOllama EmbeddingProvider = "ollama"
	EmbeddingVoyage EmbeddingProvider = "voyage"
)

// Extractors, connectors, and batteries available for selection.
var (
	KnownExtractors = []string{"docx", "html", "markdown", "pdf"}
	KnownConnectors = []string{"github", "notion", "rss"}
	KnownBatteries  = []string{"cache", "evals", "reranker"}
)

// Selection describes the installed module set. It is created at install
// time, extended by later module additions, and read-only during upgrade.
type Selection struct {
	InstallDir        string
	StorageAdapter    StorageAdapter
	AliasBase         string
	EmbeddingProvider EmbeddingProvider
	Extractors        []string
	Connectors        []string
	Batteries         []string
}

// Normalize sorts and deduplicates the module sets so that equal selections
// compare equal and render identical flags.
func (s *Selection) Normalize() {
	s.Extractors = sortedUnique(s.Extractors)
	s.Connectors = sortedUnique(s.Connectors)
	s.Batteries = sortedUnique(s.Batteries)
}

// Validate checks every field against the known module catalog.
func (s Selection) Validate() error {
	if strings.TrimSpace(s.InstallDir) == "" {
		return fmt.Errorf(messages.SelectionInstallDirRequired)
	}
	switch s.StorageAdapter {
	case StorageSQLite, StoragePostgres, StorageQdrant:
	default:
		return fmt.Errorf(messages.SelectionUnknownStorageAdapterFmt, s.StorageAdapter)
	}
	switch s.EmbeddingProvider {
	case EmbeddingOpenAI, EmbeddingOllama, EmbeddingVoyage:
	default:
		return fmt.Errorf(messages.SelectionUnknownEmbeddingProviderFmt, s.EmbeddingProvider)
	}
	if err := validateSubset(s.Extractors, KnownExtractors, messages.SelectionUnknownExtractorFmt); err != nil {
		return err
	}
	if err := validateSubset(s.Connectors, KnownConnectors, messages.SelectionUnknownConnectorFmt); err != nil {
		return err
	}
	if err := validateSubset(s.Batteries, KnownBatteries, messages.SelectionUnknownBatteryFmt); err != nil {
		return err
	}
	return nil
}

// Flags renders the CLI flags that reproduce this selection when passed to a
// published tool version. Batteries were introduced after the first releases;
// includeBatteries=false renders the flag set older versions understand.
func (s Selection) Flags(includeBatteries bool) []string {
	flags := []string{
		"--dir", s.InstallDir,
		"--storage", string(s.StorageAdapter),
		"--alias-base", s.AliasBase,
		"--embeddings", string(s.EmbeddingProvider),
	}
	for _, extractor := range sortedUnique(s.Extractors) {
		flags = append(flags, "--extractor", extractor)
	}
	for _, connector := range sortedUnique(s.Connectors) {
		flags = append(flags, "--connector", connector)
	}
	if includeBatteries {
		for _, battery := range sortedUnique(s.Batteries) {
			flags = append(flags, "--battery", battery)
		}
	}
	return flags
}

// NewerOnlyFlags lists flag names that older published versions reject.
// The external snapshot producer strips these on its unsupported-flag retry.
func NewerOnlyFlags() []string {
	return []string{"--battery"}
}

func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	dedup := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		dedup[trimmed] = struct{}{}
	}
	out := make([]string, 0, len(dedup))
	for value := range dedup {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func validateSubset(values []string, known []string, msgFmt string) error {
	knownSet := make(map[string]struct{}, len(known))
	for _, value := range known {
		knownSet[value] = struct{}{}
	}
	for _, value := range values {
		if _, ok := knownSet[value]; !ok {
			return fmt.Errorf(msgFmt, value)
		}
	}
	return nil
}

package messages

// Module selection validation errors.
const (
	SelectionInstallDirRequired          = "install directory is required"
	SelectionUnknownStorageAdapterFmt    = "unknown storage adapter %q (expected sqlite, postgres, or qdrant)"
	SelectionUnknownEmbeddingProviderFmt = "unknown embedding provider %q (expected openai, ollama, or voyage)"
	SelectionUnknownExtractorFmt         = "unknown extractor %q"
	SelectionUnknownConnectorFmt         = "unknown connector %q"
	SelectionUnknownBatteryFmt           = "unknown battery %q"
)

// Template rendering errors.
const (
	GeneratorMissingTemplateFmt = "missing template %s: %v"
	GeneratorParseTemplateFmt   = "failed to parse template %s: %v"
	GeneratorRenderTemplateFmt  = "failed to render template %s: %v"
	GeneratorMarshalConfigFmt   = "failed to encode project config: %v"
)

package messages

// Project state persistence errors.
const (
	StateMissing                = "project state not found"
	StateMissingAtFmt           = "no project state at %s: %w"
	StateSystemRequired         = "state: System is required"
	StateFailedReadFmt          = "failed to read state file %s: %v"
	StateFailedDecodeFmt        = "failed to decode state file %s: %v"
	StateInvalidFmt             = "invalid state file %s: %v"
	StateFailedCreateDirFmt     = "failed to create state directory %s: %v"
	StateFailedEncodeFmt        = "failed to encode state: %v"
	StateFailedWriteFmt         = "failed to write state file %s: %v"
	StateUnsupportedSchemaFmt   = "unsupported state schema version %d (this tool supports version %d)"
	StateInstallDirRequired     = "installDir is required"
	StateStorageAdapterRequired = "storageAdapter is required"
)

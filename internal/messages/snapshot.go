package messages

// Snapshot reconstruction errors.
const (
	SnapshotFailedScratchDirFmt  = "failed to create scratch directory: %v"
	SnapshotFailedCreateDirFmt   = "failed to create directory %s: %v"
	SnapshotFailedWriteFmt       = "failed to write %s: %v"
	SnapshotFailedStatFmt        = "failed to stat %s: %v"
	SnapshotFailedReadFmt        = "failed to read %s: %v"
	SnapshotMissingInstallDirFmt = "snapshot did not produce the install directory %s"
	SnapshotMissingConfigFileFmt = "snapshot did not produce %s: %v"

	// SnapshotNoRunnerFmt lists every package runner candidate that was tried.
	SnapshotNoRunnerFmt               = "no package runner found (tried: %s); install bun or node, or set RAGSMITH_RUNNER"
	SnapshotRunnerFailedFmt           = "%s failed for published version %s: %v\n%s"
	SnapshotRunnerFailedAfterRetryFmt = "%s failed for published version %s even without newer-only flags: %v\n%s"
	SnapshotRunnerTimeoutFmt          = "%s timed out after %s while reconstructing a published version"
)

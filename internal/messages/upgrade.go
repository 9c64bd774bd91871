package messages

// Upgrade validation and pipeline errors.
const (
	UpgradeSystemRequired          = "upgrade: System is required"
	UpgradeBaseVersionUnresolved   = "cannot determine the installed-from version; pass --from-version"
	UpgradeInvalidBaseVersionFmt   = "invalid base version %q: %v"
	UpgradeTargetVersionRequired   = "target tool version is required"
	UpgradeInvalidTargetVersionFmt = "invalid target version %q: %v"
	UpgradeDirtyTree               = "working tree has uncommitted changes; commit or stash them, or re-run with --allow-dirty"
	UpgradeInvalidOverwriteFmt     = "invalid overwrite policy %q (expected skip or force)"

	UpgradeBaseSnapshotFmt   = "failed to reconstruct version %s: %v"
	UpgradeTargetSnapshotFmt = "failed to produce version %s: %v"

	UpgradeFailedReadFmt      = "failed to read %s: %v"
	UpgradeFailedCreateDirFmt = "failed to create directory %s: %v"
	UpgradeFailedWriteFmt     = "failed to write %s: %v"

	UpgradeOpenLockFmt    = "failed to open lock file %s: %v"
	UpgradeLockFmt        = "failed to lock %s: %v"
	UpgradeLockTimeoutFmt = "timed out after %s waiting for another upgrade to finish"
)

// Upgrade report output.
const (
	UpgradeReportDryRunHeader = "Upgrade plan (dry-run): no files were written."
	UpgradeReportHeaderFmt    = "Upgraded %s -> %s:\n"

	UpgradeReportNothingTracked = "  nothing to upgrade"

	UpgradeReportRemovedHeader = "No longer produced upstream (left on disk):"
	UpgradeReportRemovedHint   = "  Delete these manually if the project no longer needs them."

	UpgradeReportConflictHeader     = "Conflicts written with inline markers:"
	UpgradeReportConflictHint       = "  Resolve the <<<<<<< / >>>>>>> regions in each file, then remove the markers."
	UpgradeReportConflictDryRunHint = "  These files would receive inline conflict markers."
	UpgradeReportDoctorHint         = "  Run 'ragsmith doctor' after resolving conflicts to verify the project."

	UpgradeReportDependenciesHeader = "Dependencies added to package.json:"
	UpgradeReportInstallHint        = "  Run your package manager's install to fetch them."

	UpgradeReportDiffTruncatedFmt = "... (truncated to %d lines)"
)

// Dependency reconciliation errors.
const (
	DepsSystemRequired          = "deps: System is required"
	DepsFailedReadManifestFmt   = "failed to read %s: %v"
	DepsFailedDecodeManifestFmt = "failed to decode %s: %v"
	DepsFailedEncodeManifestFmt = "failed to encode package manifest: %v"
	DepsFailedWriteManifestFmt  = "failed to write %s: %v"
)

// Version-control status errors.
const (
	VCSStatusFailedFmt = "git status failed: %v\n%s"
)

// Package messages centralizes user-facing strings and error formats.
package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "ragsmith"
	// RootShort is the short description for the root command.
	RootShort = "Vendored RAG engine CLI"
	// RootMissingStateFmt reports a working directory outside any initialized project.
	RootMissingStateFmt = "project is not initialized (no %s directory found from %s upward); run 'ragsmith init' first"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// UpgradeUse is the upgrade command name.
	UpgradeUse   = "upgrade"
	UpgradeShort = "Upgrade the vendored engine files to this tool version"

	UpgradeFlagFromVersion = "Tool version the current files were installed from (defaults to the persisted installed-from version)"
	UpgradeFlagOverwrite   = "What to do with files that exist locally and upstream but were never tracked: skip or force"
	UpgradeFlagDryRun      = "Plan the upgrade and print the summary without writing anything"
	UpgradeFlagNoInstall   = "Skip package.json dependency reconciliation"
	UpgradeFlagAllowDirty  = "Proceed even if the working tree has uncommitted changes"
	UpgradeFlagVerbose     = "Show per-file diff previews in the report"
	UpgradeFlagYes         = "Apply the upgrade without an interactive confirmation"

	UpgradeConfirmSummaryFmt = "This upgrade will write %d file(s), %d with conflict markers.\n"
	UpgradeConfirmTitle      = "Apply the upgrade?"
	UpgradeAborted           = "Upgrade aborted; no files were changed."

	// UpgradePlanUse is the upgrade plan subcommand name.
	UpgradePlanUse   = "plan"
	UpgradePlanShort = "Plan the upgrade without writing anything"
	UpgradePlanJSON  = "Emit the plan as JSON"
)

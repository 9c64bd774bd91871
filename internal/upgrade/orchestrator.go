package upgrade

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ragsmith/ragsmith/internal/deps"
	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/snapshot"
	"github.com/ragsmith/ragsmith/internal/state"
	"github.com/ragsmith/ragsmith/internal/vcs"
	"github.com/ragsmith/ragsmith/internal/version"
)

// Options controls one upgrade run.
type Options struct {
	// FromVersion overrides the persisted installed-from version as merge base.
	FromVersion string
	// ToolVersion is the running tool's version, the upgrade target.
	ToolVersion string
	// Overwrite decides the fate of files present on both sides but absent
	// from the base snapshot.
	Overwrite OverwritePolicy
	// DryRun stops after planning; nothing on disk changes.
	DryRun bool
	// NoInstall skips dependency reconciliation.
	NoInstall bool
	// AllowDirty proceeds despite uncommitted working-tree changes.
	AllowDirty bool
	// Verbose adds per-file diff previews to the report.
	Verbose bool

	// Confirm is consulted between planning and applying. Nil proceeds
	// without asking. Declining aborts the run; nothing has been written yet.
	Confirm func(Plan) (bool, error)

	// BaseProvider reconstructs the base snapshot. Defaults to the external
	// published-version producer.
	BaseProvider snapshot.Provider
	// TargetProvider produces the target snapshot. Defaults to the in-process
	// producer.
	TargetProvider snapshot.Provider

	System System
	Out    io.Writer
}

// Result is the outcome of an upgrade run.
type Result struct {
	Plan              Plan
	BaseVersion       string
	TargetVersion     string
	Applied           bool
	Aborted           bool
	DryRun            bool
	DependencyChanges []deps.Change
}

// Run executes the upgrade pipeline for the project at root: validate,
// snapshot both versions, plan, confirm, apply, persist state, reconcile
// dependencies, report. Every stage before apply performs only reads and
// scratch-directory writes, so aborting at confirmation never leaves the
// project half-upgraded.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	if opts.System == nil {
		opts.System = RealSystem{}
	}
	if opts.BaseProvider == nil {
		opts.BaseProvider = snapshot.ExternalProvider{}
	}
	if opts.TargetProvider == nil {
		opts.TargetProvider = snapshot.CurrentProvider{}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	project, baseVersion, targetVersion, err := validate(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	sel := project.Selection()

	base, err := opts.BaseProvider.Produce(ctx, baseVersion, sel)
	if err != nil {
		return nil, fmt.Errorf(messages.UpgradeBaseSnapshotFmt, baseVersion, err)
	}
	theirs, err := opts.TargetProvider.Produce(ctx, targetVersion, sel)
	if err != nil {
		return nil, fmt.Errorf(messages.UpgradeTargetSnapshotFmt, targetVersion, err)
	}

	plan, err := BuildPlan(ctx, PlanInputs{
		Root:      root,
		Base:      base,
		Theirs:    theirs,
		Ledger:    project.ManagedFiles,
		Overwrite: opts.Overwrite,
		System:    opts.System,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Plan:          plan,
		BaseVersion:   baseVersion,
		TargetVersion: targetVersion,
		DryRun:        opts.DryRun,
	}
	if opts.DryRun {
		writeReport(opts.Out, result, opts.Verbose)
		return result, nil
	}

	if opts.Confirm != nil {
		proceed, err := opts.Confirm(plan)
		if err != nil {
			return nil, err
		}
		if !proceed {
			result.Aborted = true
			fmt.Fprintln(opts.Out, messages.UpgradeAborted)
			return result, nil
		}
	}

	if err := opts.System.MkdirAll(state.Dir(root), 0o755); err != nil {
		return nil, fmt.Errorf(messages.UpgradeFailedCreateDirFmt, state.Dir(root), err)
	}
	err = withProjectLock(state.LockPath(root), func() error {
		if err := Apply(root, plan, opts.System); err != nil {
			return err
		}
		project.AddManagedFiles(plan.ContentPaths())
		project.InstalledFrom = state.InstalledFrom{ToolVersion: targetVersion}
		return project.Save(root, state.RealSystem{})
	})
	if err != nil {
		return nil, err
	}
	result.Applied = true

	if !opts.NoInstall {
		changes, err := deps.Reconcile(root, sel, deps.RealSystem{})
		if err != nil {
			return nil, err
		}
		result.DependencyChanges = changes
	}

	writeReport(opts.Out, result, opts.Verbose)
	return result, nil
}

// validate loads the project state and resolves the base and target versions.
// It refuses to run against a dirty working tree unless overridden; a project
// outside version control is allowed through.
func validate(ctx context.Context, root string, opts Options) (*state.Project, string, string, error) {
	project, err := state.Load(root, state.RealSystem{})
	if err != nil {
		return nil, "", "", err
	}

	baseVersion := strings.TrimSpace(opts.FromVersion)
	if baseVersion == "" {
		baseVersion = strings.TrimSpace(project.InstalledFrom.ToolVersion)
	}
	if baseVersion == "" {
		return nil, "", "", fmt.Errorf(messages.UpgradeBaseVersionUnresolved)
	}
	normalized, err := version.Normalize(baseVersion)
	if err != nil {
		return nil, "", "", fmt.Errorf(messages.UpgradeInvalidBaseVersionFmt, baseVersion, err)
	}
	baseVersion = normalized

	targetVersion := strings.TrimSpace(opts.ToolVersion)
	if targetVersion == "" {
		return nil, "", "", fmt.Errorf(messages.UpgradeTargetVersionRequired)
	}
	if !version.IsDev(targetVersion) {
		normalized, err := version.Normalize(targetVersion)
		if err != nil {
			return nil, "", "", fmt.Errorf(messages.UpgradeInvalidTargetVersionFmt, targetVersion, err)
		}
		targetVersion = normalized
	}

	if !opts.AllowDirty {
		status, err := vcs.Check(ctx, root)
		if err != nil {
			return nil, "", "", err
		}
		if status == vcs.StatusDirty {
			return nil, "", "", fmt.Errorf(messages.UpgradeDirtyTree)
		}
	}
	return project, baseVersion, targetVersion, nil
}

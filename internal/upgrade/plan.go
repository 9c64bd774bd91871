// Package upgrade plans and applies version upgrades for the vendored engine
// files. It reconstructs what the installed version produced (base) and what
// the current version would produce (theirs), classifies every tracked path
// against the working tree (ours), and writes the result back without ever
// silently discarding a local edit.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ragsmith/ragsmith/internal/merge"
	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/snapshot"
)

// PlanSchemaVersion is the JSON schema version for `ragsmith upgrade plan` output.
const PlanSchemaVersion = 1

// Action classifies what the upgrade does with one tracked path.
type Action string

const (
	// ActionAdd introduces a file that does not exist locally.
	ActionAdd Action = "add"
	// ActionUpdate overwrites a locally unmodified file with upstream content.
	ActionUpdate Action = "update"
	// ActionMerge writes a clean three-way merge of local and upstream edits.
	ActionMerge Action = "merge"
	// ActionConflict writes merged content containing inline conflict markers.
	ActionConflict Action = "conflict"
	// ActionKeep leaves a locally edited file alone because upstream did not change it.
	ActionKeep Action = "keep"
	// ActionRemovedUpstream flags a tracked file the new version no longer
	// produces. The local file is never auto-deleted.
	ActionRemovedUpstream Action = "removed-upstream"
	// ActionSkip leaves an untracked file alone under the default overwrite policy.
	ActionSkip Action = "skip"
	// ActionUnchanged means local and upstream content already agree.
	ActionUnchanged Action = "unchanged"
)

// CarriesContent reports whether the action writes file content on apply.
func (a Action) CarriesContent() bool {
	switch a {
	case ActionAdd, ActionUpdate, ActionMerge, ActionConflict:
		return true
	default:
		return false
	}
}

// OverwritePolicy decides what happens to files that exist locally and
// upstream but were never captured by a base snapshot.
type OverwritePolicy string

const (
	// OverwriteSkip leaves such files untouched. Default.
	OverwriteSkip OverwritePolicy = "skip"
	// OverwriteForce overwrites them with upstream content.
	OverwriteForce OverwritePolicy = "force"
)

// ParseOverwritePolicy validates a user-supplied overwrite policy value.
func ParseOverwritePolicy(value string) (OverwritePolicy, error) {
	switch OverwritePolicy(value) {
	case OverwriteSkip, OverwriteForce:
		return OverwritePolicy(value), nil
	case "":
		return OverwriteSkip, nil
	default:
		return "", fmt.Errorf(messages.UpgradeInvalidOverwriteFmt, value)
	}
}

// PlanItem is the planned outcome for one tracked path. Content is set only
// for actions that write on apply; Previous holds the working-tree content at
// planning time and exists for diff rendering.
type PlanItem struct {
	Path     string
	Action   Action
	Content  string
	Previous string
}

// Plan is the complete, lexicographically sorted upgrade plan.
type Plan struct {
	Items []PlanItem
}

// Counts returns per-action item counts.
func (p Plan) Counts() map[Action]int {
	counts := make(map[Action]int)
	for _, item := range p.Items {
		counts[item.Action]++
	}
	return counts
}

// ConflictPaths returns the paths planned as conflicts, in plan order.
func (p Plan) ConflictPaths() []string {
	out := make([]string, 0)
	for _, item := range p.Items {
		if item.Action == ActionConflict {
			out = append(out, item.Path)
		}
	}
	return out
}

// ContentPaths returns every path the plan writes on apply, in plan order.
// These become ledger entries after a successful apply.
func (p Plan) ContentPaths() []string {
	out := make([]string, 0)
	for _, item := range p.Items {
		if item.Action.CarriesContent() {
			out = append(out, item.Path)
		}
	}
	return out
}

// SummaryItem is one path/action pair in the machine-readable plan summary.
type SummaryItem struct {
	Path   string `json:"path"`
	Action Action `json:"action"`
}

// Summary is the machine-readable output of `ragsmith upgrade plan`.
type Summary struct {
	SchemaVersion int            `json:"schema_version"`
	DryRun        bool           `json:"dry_run"`
	Counts        map[Action]int `json:"counts"`
	Items         []SummaryItem  `json:"items"`
}

// Summary converts the plan into its machine-readable form.
func (p Plan) Summary() Summary {
	items := make([]SummaryItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, SummaryItem{Path: item.Path, Action: item.Action})
	}
	return Summary{
		SchemaVersion: PlanSchemaVersion,
		DryRun:        true,
		Counts:        p.Counts(),
		Items:         items,
	}
}

// PlanInputs carries everything BuildPlan needs.
type PlanInputs struct {
	Root      string
	Base      snapshot.Snapshot
	Theirs    snapshot.Snapshot
	Ledger    []string
	Overwrite OverwritePolicy
	System    System
}

// BuildPlan classifies every tracked path. Tracked paths are the union of the
// ledger and both snapshots; for each one the working-tree content is read
// and the (base, ours, theirs) triple decides the action. The returned plan
// is sorted by path.
func BuildPlan(ctx context.Context, in PlanInputs) (Plan, error) {
	if in.System == nil {
		return Plan{}, fmt.Errorf(messages.UpgradeSystemRequired)
	}
	policy := in.Overwrite
	if policy == "" {
		policy = OverwriteSkip
	}

	items := make([]PlanItem, 0, len(in.Theirs))
	for _, path := range trackedPaths(in.Base, in.Theirs, in.Ledger) {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		ours, oursExists, err := readWorkingFile(in.System, in.Root, path)
		if err != nil {
			return Plan{}, err
		}
		base, baseExists := in.Base[path]
		theirs, theirsExists := in.Theirs[path]

		item, include := classify(ctx, triple{
			path:         path,
			ours:         ours,
			oursExists:   oursExists,
			base:         base,
			baseExists:   baseExists,
			theirs:       theirs,
			theirsExists: theirsExists,
		}, policy)
		if include {
			items = append(items, item)
		}
	}
	return Plan{Items: items}, nil
}

type triple struct {
	path         string
	ours         string
	oursExists   bool
	base         string
	baseExists   bool
	theirs       string
	theirsExists bool
}

func classify(ctx context.Context, t triple, policy OverwritePolicy) (PlanItem, bool) {
	item := PlanItem{Path: t.path, Previous: t.ours}
	switch {
	case !t.oursExists && !t.theirsExists:
		// Ledger entry deleted locally and absent upstream: nothing to report.
		return PlanItem{}, false
	case !t.oursExists:
		item.Action = ActionAdd
		item.Content = t.theirs
	case !t.theirsExists && !t.baseExists:
		item.Action = ActionKeep
	case !t.theirsExists:
		item.Action = ActionRemovedUpstream
	case !t.baseExists:
		if policy == OverwriteForce {
			item.Action = ActionUpdate
			item.Content = t.theirs
		} else {
			item.Action = ActionSkip
		}
	case t.ours == t.base:
		if t.theirs == t.base {
			item.Action = ActionUnchanged
		} else {
			item.Action = ActionUpdate
			item.Content = t.theirs
		}
	case t.theirs == t.base:
		item.Action = ActionKeep
	default:
		result := merge.Merge(ctx, t.base, t.ours, t.theirs)
		if result.HadConflict {
			item.Action = ActionConflict
		} else {
			item.Action = ActionMerge
		}
		item.Content = result.Text
	}
	return item, true
}

func trackedPaths(base, theirs snapshot.Snapshot, ledger []string) []string {
	set := make(map[string]struct{}, len(base)+len(theirs)+len(ledger))
	for path := range base {
		set[path] = struct{}{}
	}
	for path := range theirs {
		set[path] = struct{}{}
	}
	for _, path := range ledger {
		set[path] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func readWorkingFile(sys System, root string, path string) (string, bool, error) {
	data, err := sys.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(messages.UpgradeFailedReadFmt, path, err)
	}
	return string(data), true, nil
}

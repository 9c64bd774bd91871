package upgrade

import (
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fatih/color"

	"github.com/ragsmith/ragsmith/internal/messages"
)

// reportDiffMaxLines caps each per-file diff preview in verbose reports.
const reportDiffMaxLines = 40

var (
	reportColorWrite    = color.New(color.FgGreen)
	reportColorConflict = color.New(color.FgRed)
	reportColorNote     = color.New(color.FgYellow)
	reportColorHeading  = color.New(color.FgCyan)
)

// reportActionOrder fixes the order actions appear in the summary.
var reportActionOrder = []Action{
	ActionAdd,
	ActionUpdate,
	ActionMerge,
	ActionConflict,
	ActionKeep,
	ActionRemovedUpstream,
	ActionSkip,
	ActionUnchanged,
}

func writeReport(out io.Writer, result *Result, verbose bool) {
	if result.DryRun {
		fmt.Fprintln(out, messages.UpgradeReportDryRunHeader)
	} else {
		fmt.Fprintf(out, messages.UpgradeReportHeaderFmt, result.BaseVersion, result.TargetVersion)
	}

	counts := result.Plan.Counts()
	for _, action := range reportActionOrder {
		count := counts[action]
		if count == 0 {
			continue
		}
		line := fmt.Sprintf("  %-17s %d", string(action), count)
		switch action {
		case ActionConflict:
			reportColorConflict.Fprintln(out, line)
		case ActionAdd, ActionUpdate, ActionMerge:
			reportColorWrite.Fprintln(out, line)
		case ActionRemovedUpstream, ActionSkip:
			reportColorNote.Fprintln(out, line)
		default:
			fmt.Fprintln(out, line)
		}
	}
	if len(result.Plan.Items) == 0 {
		fmt.Fprintln(out, messages.UpgradeReportNothingTracked)
	}

	if verbose {
		writeDiffPreviews(out, result.Plan)
	}
	writeRemovedUpstream(out, result.Plan)
	writeConflicts(out, result.Plan, result.DryRun)
	writeDependencyChanges(out, result)
}

func writeDiffPreviews(out io.Writer, plan Plan) {
	for _, item := range plan.Items {
		if !item.Action.CarriesContent() || item.Previous == item.Content {
			continue
		}
		reportColorHeading.Fprintf(out, "\n--- %s (%s)\n", item.Path, item.Action)
		fmt.Fprint(out, renderTruncatedUnifiedDiff(item.Path, item.Previous, item.Content, reportDiffMaxLines))
	}
}

func writeRemovedUpstream(out io.Writer, plan Plan) {
	removed := make([]string, 0)
	for _, item := range plan.Items {
		if item.Action == ActionRemovedUpstream {
			removed = append(removed, item.Path)
		}
	}
	if len(removed) == 0 {
		return
	}
	fmt.Fprintln(out)
	reportColorNote.Fprintln(out, messages.UpgradeReportRemovedHeader)
	for _, path := range removed {
		fmt.Fprintf(out, "  - %s\n", path)
	}
	fmt.Fprintln(out, messages.UpgradeReportRemovedHint)
}

func writeConflicts(out io.Writer, plan Plan, dryRun bool) {
	conflicts := plan.ConflictPaths()
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintln(out)
	reportColorConflict.Fprintln(out, messages.UpgradeReportConflictHeader)
	for _, path := range conflicts {
		fmt.Fprintf(out, "  - %s\n", path)
	}
	if dryRun {
		fmt.Fprintln(out, messages.UpgradeReportConflictDryRunHint)
		return
	}
	fmt.Fprintln(out, messages.UpgradeReportConflictHint)
	fmt.Fprintln(out, messages.UpgradeReportDoctorHint)
}

func writeDependencyChanges(out io.Writer, result *Result) {
	if result.DryRun || !result.Applied {
		return
	}
	if len(result.DependencyChanges) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, messages.UpgradeReportDependenciesHeader)
	for _, change := range result.DependencyChanges {
		fmt.Fprintf(out, "  + %s@%s (%s)\n", change.Name, change.Version, change.Kind)
	}
	fmt.Fprintln(out, messages.UpgradeReportInstallHint)
}

func renderTruncatedUnifiedDiff(path string, from string, to string, maxLines int) string {
	diff := udiff.Unified(path+" (before)", path+" (after)", from, to)
	lines := splitDiffLines(diff)
	if len(lines) <= maxLines {
		return ensureTrailingNewline(strings.Join(lines, "\n"))
	}
	truncated := lines[:maxLines]
	truncated = append(truncated, fmt.Sprintf(messages.UpgradeReportDiffTruncatedFmt, maxLines))
	return ensureTrailingNewline(strings.Join(truncated, "\n"))
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" {
		return ""
	}
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/terminal"
	"github.com/ragsmith/ragsmith/internal/upgrade"
)

var runConfirmFormFunc = func(form *huh.Form) error { return form.Run() }
var isInteractiveFn = terminal.IsInteractive
var upgradeRunFunc = upgrade.Run

func newUpgradeCmd() *cobra.Command {
	var (
		fromVersion string
		overwrite   string
		dryRun      bool
		noInstall   bool
		allowDirty  bool
		verbose     bool
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   messages.UpgradeUse,
		Short: messages.UpgradeShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProjectRoot()
			if err != nil {
				return err
			}
			policy, err := upgrade.ParseOverwritePolicy(overwrite)
			if err != nil {
				return err
			}

			opts := upgrade.Options{
				FromVersion: fromVersion,
				ToolVersion: Version,
				Overwrite:   policy,
				DryRun:      dryRun,
				NoInstall:   noInstall,
				AllowDirty:  allowDirty,
				Verbose:     verbose,
				Out:         cmd.OutOrStdout(),
			}
			// Interactive runs confirm before anything is written; -y and
			// non-interactive runs proceed automatically.
			if !yes && !dryRun && isInteractiveFn() {
				opts.Confirm = confirmUpgrade(cmd.OutOrStdout())
			}

			_, err = upgradeRunFunc(cmd.Context(), root, opts)
			return err
		},
	}
	cmd.AddCommand(newUpgradePlanCmd())

	cmd.Flags().StringVar(&fromVersion, "from-version", "", messages.UpgradeFlagFromVersion)
	cmd.Flags().StringVar(&overwrite, "overwrite", string(upgrade.OverwriteSkip), messages.UpgradeFlagOverwrite)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, messages.UpgradeFlagDryRun)
	cmd.Flags().BoolVar(&noInstall, "no-install", false, messages.UpgradeFlagNoInstall)
	cmd.Flags().BoolVar(&allowDirty, "allow-dirty", false, messages.UpgradeFlagAllowDirty)
	cmd.Flags().BoolVar(&verbose, "verbose", false, messages.UpgradeFlagVerbose)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.UpgradeFlagYes)
	return cmd
}

func confirmUpgrade(out io.Writer) func(upgrade.Plan) (bool, error) {
	return func(plan upgrade.Plan) (bool, error) {
		counts := plan.Counts()
		writes := counts[upgrade.ActionAdd] + counts[upgrade.ActionUpdate] + counts[upgrade.ActionMerge] + counts[upgrade.ActionConflict]
		fmt.Fprintf(out, messages.UpgradeConfirmSummaryFmt, writes, counts[upgrade.ActionConflict])

		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(messages.UpgradeConfirmTitle).
				Value(&confirmed),
		))
		if err := runConfirmFormFunc(form); err != nil {
			return false, err
		}
		return confirmed, nil
	}
}

func newUpgradePlanCmd() *cobra.Command {
	var (
		fromVersion string
		overwrite   string
		outputJSON  bool
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   messages.UpgradePlanUse,
		Short: messages.UpgradePlanShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProjectRoot()
			if err != nil {
				return err
			}
			policy, err := upgrade.ParseOverwritePolicy(overwrite)
			if err != nil {
				return err
			}

			opts := upgrade.Options{
				FromVersion: fromVersion,
				ToolVersion: Version,
				Overwrite:   policy,
				DryRun:      true,
				Verbose:     verbose,
				Out:         cmd.OutOrStdout(),
			}
			if outputJSON {
				opts.Out = io.Discard
			}
			result, err := upgradeRunFunc(cmd.Context(), root, opts)
			if err != nil {
				return err
			}
			if outputJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(result.Plan.Summary())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromVersion, "from-version", "", messages.UpgradeFlagFromVersion)
	cmd.Flags().StringVar(&overwrite, "overwrite", string(upgrade.OverwriteSkip), messages.UpgradeFlagOverwrite)
	cmd.Flags().BoolVar(&outputJSON, "json", false, messages.UpgradePlanJSON)
	cmd.Flags().BoolVar(&verbose, "verbose", false, messages.UpgradeFlagVerbose)
	return cmd
}

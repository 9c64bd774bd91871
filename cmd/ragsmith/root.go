package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ragsmith/ragsmith/internal/messages"
	"github.com/ragsmith/ragsmith/internal/state"
)

var getwd = os.Getwd

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newUpgradeCmd())
	return cmd
}

// resolveProjectRoot walks upward from the working directory to the nearest
// directory containing the project state dir.
func resolveProjectRoot() (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	dir := cwd
	for {
		info, err := os.Stat(filepath.Join(dir, state.DirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf(messages.RootMissingStateFmt, state.DirName, cwd)
		}
		dir = parent
	}
}

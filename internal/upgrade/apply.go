package upgrade

import (
	"fmt"
	"path/filepath"

	"github.com/ragsmith/ragsmith/internal/messages"
)

// Apply writes every content-carrying plan item under root, creating parent
// directories as needed. Keep, skip, unchanged, and removed-upstream items
// are untouched.
func Apply(root string, plan Plan, sys System) error {
	if sys == nil {
		return fmt.Errorf(messages.UpgradeSystemRequired)
	}
	for _, item := range plan.Items {
		if !item.Action.CarriesContent() {
			continue
		}
		dest := filepath.Join(root, filepath.FromSlash(item.Path))
		if err := sys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf(messages.UpgradeFailedCreateDirFmt, filepath.Dir(dest), err)
		}
		if err := sys.WriteFileAtomic(dest, []byte(item.Content), 0o644); err != nil {
			return fmt.Errorf(messages.UpgradeFailedWriteFmt, dest, err)
		}
	}
	return nil
}

package upgrade

import (
	"os"

	"github.com/ragsmith/ragsmith/internal/fsutil"
)

// System abstracts filesystem access for planning and applying upgrades. It
// is intentionally package-local rather than shared, to enable parallel-safe
// unit tests.
type System interface {
	ReadFile(name string) ([]byte, error)
	MkdirAll(path string, perm os.FileMode) error
	WriteFileAtomic(name string, data []byte, perm os.FileMode) error
}

// RealSystem implements System against the real filesystem.
type RealSystem struct{}

func (RealSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (RealSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (RealSystem) WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	return fsutil.WriteFileAtomic(name, data, perm)
}

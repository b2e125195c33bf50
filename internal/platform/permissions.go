package platform

import (
	"os"
	"runtime"
)

// Chmod applies mode to path. WriteFileAtomic uses it to give a replacement
// registry file the mode of the file it replaces. Windows has no Unix
// permission bits, so there it does nothing.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

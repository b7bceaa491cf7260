//go:build unix

package backend

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// isReadOnly asks the kernel whether the current user may write to path,
// which covers ownership, ACLs and read-only mounts
func isReadOnly(path string, _ fs.FileInfo) bool {
	return unix.Access(path, unix.W_OK) != nil
}

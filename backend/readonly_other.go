//go:build !unix

package backend

import "io/fs"

func isReadOnly(_ string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0o200 == 0
}

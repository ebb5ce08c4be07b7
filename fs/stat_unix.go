//go:build linux

package fs

import (
	"os"
	"syscall"
)

// stat forms the canonical fingerprint fields for path: mode, inode,
// device, uid, gid, size, mtime_ns, ctime_ns, in that fixed order.
// Link count and atime are deliberately excluded - neither indicates
// that the file's content or identity changed.
func stat(path string) (mode, ino, dev, uid, gid, size, mtimeNs, ctimeNs int64, ok bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return
	}
	s, isStatT := info.Sys().(*syscall.Stat_t)
	if !isStatT {
		return
	}
	mode = int64(info.Mode())
	ino = int64(s.Ino)
	dev = int64(s.Dev)
	uid = int64(s.Uid)
	gid = int64(s.Gid)
	size = info.Size()
	mtimeNs = info.ModTime().UnixNano()
	ctimeNs = s.Ctim.Sec*1e9 + s.Ctim.Nsec
	ok = true
	return
}

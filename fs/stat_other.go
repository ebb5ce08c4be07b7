//go:build !linux

package fs

import "os"

// stat is the non-Linux fallback: it still forms a fingerprint from
// whatever os.FileInfo exposes portably, but inode/device/uid/gid/ctime
// aren't reliably available from a *nix-agnostic API, so they're left at
// zero. This still detects size and mtime changes, which covers the
// common case; it's a narrower fingerprint than the Linux build.
func stat(path string) (mode, ino, dev, uid, gid, size, mtimeNs, ctimeNs int64, ok bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return
	}
	mode = int64(info.Mode())
	size = info.Size()
	mtimeNs = info.ModTime().UnixNano()
	ok = true
	return
}

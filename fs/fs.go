// Package fs provides filesystem helpers shared by handlers: existence
// checks, atomic writes, and the stat-based fingerprint that backs
// FileHandler.
package fs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/palotasb/boldiweb/cli/logging"
)

var log = logging.Log

// DirPermissions are the default permission bits applied to directories
// created on behalf of a write.
const DirPermissions = os.ModeDir | 0o775

// EnsureDir ensures the directory containing filename exists.
func EnsureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, DirPermissions)
}

// PathExists returns true if filename exists, as a file, directory or
// symlink (broken or not).
func PathExists(filename string) bool {
	_, err := os.Lstat(filename)
	return err == nil
}

// FileExists returns true if filename exists and is not a directory
// (following symlinks).
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

// WriteFile writes the contents of from to the file named to, writing to
// a temporary file in the same directory first and renaming it into
// place so a reader never observes a partial write.
func WriteFile(from io.Reader, to string, mode os.FileMode) error {
	dir, file := filepath.Split(to)
	if dir != "" {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, file+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, from); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if mode == 0 {
		mode = 0o664
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return renameFile(tmp.Name(), to)
}

// renameFile tries a plain rename first, since it's atomic, then falls
// back to copy+remove: os.Rename fails across filesystem boundaries,
// which matters when the temp file and the destination don't share a
// filesystem (e.g. /tmp mounted as tmpfs).
func renameFile(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	log.Debug("rename %s -> %s crossed a filesystem boundary, falling back to copy", from, to)
	if err := copyFile(from, to); err != nil {
		return err
	}
	return os.Remove(from)
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

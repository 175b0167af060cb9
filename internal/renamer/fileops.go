package renamer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

const defaultDirMode os.FileMode = 0o755

// fileOps performs every filesystem effect of a placement. In dry-run mode
// each effect is skipped at the point where it would happen.
type fileOps struct {
	dryRun   bool
	fileMode os.FileMode
	dirMode  os.FileMode
	emit     func(t types.EventType, format string, a ...any)
}

// move moves src to dst, creating the destination folder first. Moves
// across filesystems fall back to copy and remove.
func (o *fileOps) move(src, dst string) error {
	if err := o.mkdirAll(filepath.Dir(dst)); err != nil {
		return err
	}
	if o.dryRun {
		return nil
	}

	err := os.Rename(src, dst)
	if err != nil {
		if !isCrossDevice(err) {
			return types.ErrIO{Op: "move", Path: src, Err: err}
		}
		if err := copyFile(src, dst); err != nil {
			return types.ErrIO{Op: "copy", Path: src, Err: err}
		}
		if err := os.Remove(src); err != nil {
			o.emit(types.EventWarning, "Failed to remove %s after copy: %v", src, err)
		}
	}

	if o.fileMode != 0 {
		if err := os.Chmod(dst, o.fileMode); err != nil {
			o.emit(types.EventWarning, "Failed to set permissions on %s: %v", dst, err)
		}
	}
	return nil
}

func (o *fileOps) mkdirAll(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	o.emit(types.EventProgress, "Creating folder %s", dir)
	if o.dryRun {
		return nil
	}

	mode := o.dirMode
	if mode == 0 {
		mode = defaultDirMode
	}
	if err := os.MkdirAll(dir, mode); err != nil {
		return types.ErrIO{Op: "mkdir", Path: dir, Err: err}
	}
	if o.dirMode != 0 {
		if err := os.Chmod(dir, o.dirMode); err != nil {
			o.emit(types.EventWarning, "Failed to set permissions on %s: %v", dir, err)
		}
	}
	return nil
}

func (o *fileOps) remove(path string) error {
	if o.dryRun {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return types.ErrIO{Op: "remove", Path: path, Err: err}
	}
	return nil
}

func (o *fileOps) removeAll(path string) error {
	if o.dryRun {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return types.ErrIO{Op: "remove", Path: path, Err: err}
	}
	return nil
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// copyFile copies src to dst keeping the source mode. A partial copy is removed.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// Package atomicfile writes whole files to disk, either in place or through a
// temp-file, fsync and rename sequence that never leaves a partially written
// destination behind.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPerm is used when a writer has no permission bits set.
const DefaultPerm os.FileMode = 0o644

// fallbackName names the temp file when the destination has no base name.
const fallbackName = "output.wav"

// Writer persists a complete byte buffer at path.
type Writer interface {
	WriteFile(path string, data []byte) error
}

// New returns the atomic writer when durable is set, the direct one otherwise.
func New(durable bool) Writer {
	if durable {
		return &Atomic{Perm: DefaultPerm}
	}

	return &Direct{Perm: DefaultPerm}
}

// Direct truncates and rewrites the destination in place, then fsyncs it.
// A crash mid-write can leave a truncated destination.
type Direct struct {
	Perm os.FileMode
}

// WriteFile implements Writer.
func (w *Direct) WriteFile(path string, data []byte) error {
	return writeSynced(path, data, permOrDefault(w.Perm))
}

// Atomic writes to a hidden temp file next to the destination, fsyncs and
// closes it, then renames it over the destination. The containing directory
// is synced afterwards on a best-effort basis.
//
// Either the previous destination stays intact or the new content is fully
// present. The temp file must be on the same filesystem as the destination,
// which is why it lives in the same directory.
type Atomic struct {
	Perm os.FileMode

	// beforeRename runs once the temp file is synced and closed. Tests use
	// it to stop the sequence the way a crash would.
	beforeRename func(tmpPath string) error
}

// WriteFile implements Writer.
func (w *Atomic) WriteFile(path string, data []byte) error {
	tmpPath := TempPath(path)

	err := writeSynced(tmpPath, data, permOrDefault(w.Perm))
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if w.beforeRename != nil {
		err := w.beforeRename(tmpPath)
		if err != nil {
			return err
		}
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp %s -> %s (must be same filesystem): %w", tmpPath, path, err)
	}

	// a failed directory sync doesn't undo the rename
	_ = SyncDir(filepath.Dir(path))

	return nil
}

// TempPath returns the hidden temp path used for path: ".<name>.tmp" in the
// same directory.
func TempPath(path string) string {
	dir, name := filepath.Split(path)
	if name == "" || name == "." || name == ".." {
		name = fallbackName
	}

	return filepath.Join(dir, "."+name+".tmp")
}

// SyncDir flushes the directory entry metadata of dir to stable storage.
// Some filesystems don't support syncing directories and return an error.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open directory %s: %w", dir, err)
	}
	defer d.Close()

	err = d.Sync()
	if err != nil {
		return fmt.Errorf("fsync directory %s: %w", dir, err)
	}

	return nil
}

func writeSynced(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	_, err = f.Write(data)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	err = f.Sync()
	if err != nil {
		f.Close()
		return fmt.Errorf("fsync %s: %w", path, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

func permOrDefault(perm os.FileMode) os.FileMode {
	if perm == 0 {
		return DefaultPerm
	}

	return perm
}

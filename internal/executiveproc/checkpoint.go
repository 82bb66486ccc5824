package executiveproc

import (
	"os"
	"path/filepath"

	"github.com/hardsat/rad/internal/faulterr"
)

// writeCheckpoint persists data to path via a temp-file-then-rename, so a
// reader never observes a partially written checkpoint.
func writeCheckpoint(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".rad.chkpt.*")
	if err != nil {
		return faulterr.Wrap(faulterr.IO, "executiveproc: create checkpoint temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return faulterr.Wrap(faulterr.IO, "executiveproc: write checkpoint temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return faulterr.Wrap(faulterr.IO, "executiveproc: sync checkpoint temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return faulterr.Wrap(faulterr.IO, "executiveproc: close checkpoint temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return faulterr.Wrap(faulterr.IO, "executiveproc: replace checkpoint", err)
	}
	return nil
}

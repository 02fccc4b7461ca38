package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Files resolves and replaces the per-user raw schedule exports. Each
// user owns exactly one file at a deterministic path; a missing file
// simply means "no schedule yet".
type Files struct {
	Dir string
}

// Path returns the deterministic location of the user's export.
func (f *Files) Path(userID int64) string {
	return filepath.Join(f.Dir, fmt.Sprintf("%d.csv", userID))
}

// Exists reports whether the user has a saved export at all.
func (f *Files) Exists(userID int64) bool {
	_, err := os.Stat(f.Path(userID))
	return err == nil
}

// Replace swaps the user's schedule file with the given content. The
// new file is fully staged first and then renamed into place, so a
// failed write never costs the user their previous schedule and a
// concurrent reader never sees a partial file.
func (f *Files) Replace(userID int64, r io.Reader) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create schedule directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.Dir, ".staging-*")
	if err != nil {
		return fmt.Errorf("failed to stage schedule file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write staged schedule file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finish staged schedule file: %w", err)
	}

	if err := os.Rename(tmpName, f.Path(userID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move schedule file into place: %w", err)
	}
	return nil
}

package dashboard

import (
	"fmt"
	"os"
	"path/filepath"
)

const reportFileMode = 0o644

// DirSaver writes downloaded reports into a fixed directory.
type DirSaver struct {
	Dir string
}

// Save writes the report and returns its full path. The file name is
// sanitized to its base component so server-supplied names cannot escape
// the target directory.
func (s DirSaver) Save(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}

	path := filepath.Join(dir, filepath.Base(name))

	if err := os.WriteFile(path, data, reportFileMode); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}

	return path, nil
}

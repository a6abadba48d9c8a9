package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files to their paths, creating parent
// directories as needed.
func WriteFiles(files []GeneratedFile) error {
	for _, file := range files {
		err := os.MkdirAll(filepath.Dir(file.Filename), dirPerm)
		if err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		err = os.WriteFile(file.Filename, file.Content, filePerm)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}

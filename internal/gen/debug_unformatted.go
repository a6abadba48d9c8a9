package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// writeDebugUnformatted writes unformatted code to a sidecar file next to the
// intended output. It never makes generation fail harder.
func writeDebugUnformatted(filename string, content []byte) error {
	if filename == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(filename), dirPerm); err != nil {
		return err
	}

	// Keep a .go suffix for syntax highlighting without clashing with the
	// real output.
	debugName := strings.TrimSuffix(filename, ".go") + ".unformatted.go"

	return os.WriteFile(debugName, content, filePerm)
}

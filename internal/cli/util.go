package cli

import (
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// isTerminal reports whether w is a character device such as an interactive stderr.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}

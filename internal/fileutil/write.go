package fileutil

import (
	"bytes"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

func WriteIfChanged(path string, data []byte) error {
	_, err := WriteIfChangedTracked(path, data)
	return err
}

// WriteIfChangedTracked writes data to path unless the file already holds the
// same bytes, and reports whether it wrote.
func WriteIfChangedTracked(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, errors.WithStack(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.WithStack(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

// ReadIfExists returns the file contents, or nil when path does not exist.
func ReadIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// RemoveIfExists deletes path, treating an already missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

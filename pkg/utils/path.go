package utils

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// CreateFolder makes sure every given directory exists.
func CreateFolder(folderPaths ...string) error {
	for _, folder := range folderPaths {
		if folder == "" {
			continue
		}
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", folder, err)
		}
	}
	return nil
}

// RemoveFiles deletes temporary files, ignoring the ones already gone.
func RemoveFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("Failed to cleanup temporary file %s: %v", path, err)
		}
	}
}

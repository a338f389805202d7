package handler

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// LoadQuery reads query text from a file.
func LoadQuery(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("query file path is empty: %w", dbhandler.ErrInvalidArgument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read query file %s: %w", path, err)
	}
	return string(data), nil
}

// LoadQueryFS reads query text from name within fsys.
func LoadQueryFS(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read query file %s: %w", name, err)
	}
	return string(data), nil
}

// Package filestore implements interfaces.StorageManager on JSON files,
// one directory per collection and one file per record.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/abriltello/portafolioAI/internal/interfaces"
)

// jsonDir is a directory of JSON records keyed by file name.
type jsonDir struct {
	path string
	mu   sync.RWMutex
}

func newJSONDir(base, name string) (*jsonDir, error) {
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &jsonDir{path: dir}, nil
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (d *jsonDir) filePath(key string) string {
	return filepath.Join(d.path, sanitizeKey(key)+".json")
}

// read unmarshals the record for key into dest. Missing or empty files are ErrNotFound.
func (d *jsonDir) read(key string, dest any) error {
	path := d.filePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return interfaces.ErrNotFound
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// write marshals data to indented JSON and writes it atomically.
func (d *jsonDir) write(key string, data any) error {
	target := d.filePath(key)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	// Atomic write: temp file in the same directory, then rename
	tmpFile, err := os.CreateTemp(d.path, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// remove deletes the record for key. Missing records are ErrNotFound.
func (d *jsonDir) remove(key string) error {
	if err := os.Remove(d.filePath(key)); err != nil {
		if os.IsNotExist(err) {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// keys returns all record keys, skipping temp files.
func (d *jsonDir) keys() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", d.path, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}

// readAll decodes every record in the directory. Records that vanish between
// listing and reading are skipped.
func readAll[T any](d *jsonDir) ([]*T, error) {
	keys, err := d.keys()
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		var v T
		if err := d.read(k, &v); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

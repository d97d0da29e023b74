package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/giantswarm/lineage/pkg/logging"
)

// Storage provides generic storage functionality for entities using a single
// state directory. Each entity type is a subdirectory, each entity one .yaml file.
type Storage struct {
	mu       sync.RWMutex
	stateDir string // Optional custom directory - when set, uses this path; otherwise DefaultStateDir
}

// NewStorage creates a new Storage instance using DefaultStateDir
func NewStorage() *Storage {
	return &Storage{}
}

// NewStorageWithPath creates a new Storage instance with a custom state directory
func NewStorageWithPath(stateDir string) *Storage {
	return &Storage{
		stateDir: stateDir,
	}
}

// Save stores data for the given entity type and name
// entityType: subdirectory name (plans, activities, collections)
// name: filename without extension
// data: file content to write
func (ds *Storage) Save(entityType string, name string, data []byte) error {
	if entityType == "" {
		return fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	targetDir := filepath.Join(ds.dir(), entityType)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", targetDir, err)
	}

	filePath := filepath.Join(targetDir, ds.sanitizeFilename(name)+".yaml")

	// Write through a temp file and rename into place
	tmp, err := os.CreateTemp(targetDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", targetDir, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	logging.Debug("Storage", "Saved %s/%s to %s", entityType, name, filePath)
	return nil
}

// Load retrieves data for the given entity type and name
// Returns the file content, or an error if not found
func (ds *Storage) Load(entityType string, name string) ([]byte, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	filePath := filepath.Join(ds.dir(), entityType, ds.sanitizeFilename(name)+".yaml")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("entity %s/%s not found", entityType, name)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return data, nil
}

// Exists reports whether an entity of the given type and name is stored
func (ds *Storage) Exists(entityType string, name string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	_, err := os.Stat(filepath.Join(ds.dir(), entityType, ds.sanitizeFilename(name)+".yaml"))
	return err == nil
}

// Delete removes the file for the given entity type and name
func (ds *Storage) Delete(entityType string, name string) error {
	if entityType == "" {
		return fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	filePath := filepath.Join(ds.dir(), entityType, ds.sanitizeFilename(name)+".yaml")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("entity %s/%s not found", entityType, name)
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}

	logging.Debug("Storage", "Deleted %s/%s from %s", entityType, name, filePath)
	return nil
}

// List returns all available names for the given entity type, sorted
func (ds *Storage) List(entityType string) ([]string, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entityType cannot be empty")
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	entityPath := filepath.Join(ds.dir(), entityType)
	names, err := ds.listFilesInDirectory(entityPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list %s: %w", entityType, err)
	}

	logging.Debug("Storage", "Listed %d %s entities", len(names), entityType)
	return names, nil
}

// Dir returns the state directory this storage writes to
func (ds *Storage) Dir() string {
	return ds.dir()
}

func (ds *Storage) dir() string {
	if ds.stateDir != "" {
		return ds.stateDir
	}
	return DefaultStateDir
}

// listFilesInDirectory lists all .yaml files in a directory and returns their base names
func (ds *Storage) listFilesInDirectory(dirPath string) ([]string, error) {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return []string{}, nil
	}

	yamlFiles, err := filepath.Glob(filepath.Join(dirPath, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yaml files: %w", err)
	}

	names := make([]string, 0, len(yamlFiles))
	for _, filePath := range yamlFiles {
		basename := filepath.Base(filePath)
		names = append(names, strings.TrimSuffix(basename, filepath.Ext(basename)))
	}
	sort.Strings(names)

	return names, nil
}

// sanitizeFilename ensures the filename is safe for filesystem operations
func (ds *Storage) sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", ".", "_",
		" ", "_",
	)
	sanitized := replacer.Replace(name)

	// Collapse multiple consecutive underscores to single underscore
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}

	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "unnamed"
	}

	return sanitized
}

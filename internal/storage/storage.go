package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/quill/internal/model"
)

// Storage defines the interface for persisting a project.
type Storage interface {
	// Load replaces the project's content with the stored one.
	Load(p *model.Project) error
	Save(p *model.Project) error
	Path() string
}

// JSONStorage implements Storage using a snapshot file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the snapshot file into p.
// A missing file leaves p as it is.
func (s *JSONStorage) Load(p *model.Project) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := p.Import(data); err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}
	return nil
}

// Save writes the project snapshot to the file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Save(p *model.Project) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := p.Export()
	if err != nil {
		return err
	}

	// Write a sibling file, then rename it over the project file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// configDir returns ~/.config/quill.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "quill"), nil
}

// DefaultProjectPath returns the default snapshot path: ~/.config/quill/project.json
func DefaultProjectPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "project.json"), nil
}

// OpenStorage opens the backend named in cfg.
func OpenStorage(cfg *Config) (Storage, error) {
	switch cfg.Backend {
	case BackendSQLite:
		path := cfg.ProjectPath
		if path == "" {
			var err error
			if path, err = DefaultSQLitePath(); err != nil {
				return nil, err
			}
		}
		return NewSQLiteStorage(path)

	case BackendJSON, "":
		path := cfg.ProjectPath
		if path == "" {
			var err error
			if path, err = DefaultProjectPath(); err != nil {
				return nil, err
			}
		}
		return NewJSONStorage(path), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

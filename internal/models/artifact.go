package models

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// Artifact names used by the trainer and the scorer.
const (
	ArtifactForest = "isolation_forest"
	ArtifactScaler = "scaler"
	ArtifactPCA    = "pca"
)

// Store persists fitted models by name.
type Store interface {
	Save(name string, v any) error
	Load(name string, v any) error
}

// FileStore keeps one gob file per artifact under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

func (s *FileStore) Path(name string) string {
	return filepath.Join(s.Dir, name+".gob")
}

func (s *FileStore) Save(name string, v any) (err error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(s.Path(name))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Load(name string, v any) error {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

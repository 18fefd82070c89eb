// Package store persists trained model artifacts and the append-only
// training metadata history. Writes are atomic from the perspective of
// a concurrent loader: content goes to a temp file in the same
// directory, is flushed, then renamed over the target.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/crimson-sun/pumpwise/internal/engine/gbdt"
	"github.com/crimson-sun/pumpwise/internal/engine/preprocess"
)

const (
	modelFile    = "failure_model.json"
	metadataFile = "model_metadata.json"
)

// ErrNoModel reports that no persisted model artifact exists yet.
var ErrNoModel = errors.New("store: no persisted model")

// Artifact bundles everything that must be versioned together: the
// trained ensemble, the preprocessor parameters frozen at its fit
// time, and the held-out accuracy.
type Artifact struct {
	Model        gbdt.State        `json:"model"`
	Preprocessor preprocess.Params `json:"preprocessor"`
	Accuracy     float64           `json:"accuracy"`
	Features     []string          `json:"features"`
	SavedAt      time.Time         `json:"saved_at"`
}

// Metadata is one record of the append-only training history.
type Metadata struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  float64   `json:"accuracy"`
	Features  []string  `json:"features"`
	ModelType string    `json:"model_type"`
	Version   string    `json:"version"`
}

// Store reads and writes artifacts under a single directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created lazily
// on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// SaveModel atomically replaces the persisted model artifact.
func (s *Store) SaveModel(a Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal model: %w", err)
	}
	if err := s.writeAtomic(modelFile, data); err != nil {
		return fmt.Errorf("store: save model: %w", err)
	}
	return nil
}

// LoadModel reads the persisted model artifact. A missing file yields
// ErrNoModel; a corrupt one yields a parse error. Either way the
// caller falls back to a fresh untrained model.
func (s *Store) LoadModel() (Artifact, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, modelFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, ErrNoModel
		}
		return Artifact{}, fmt.Errorf("store: load model: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("store: parse model: %w", err)
	}
	return a, nil
}

// AppendMetadata appends one record to the training history and
// rewrites the history file atomically.
func (s *Store) AppendMetadata(m Metadata) error {
	history, err := s.History()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	history = append(history, m)

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}
	if err := s.writeAtomic(metadataFile, data); err != nil {
		return fmt.Errorf("store: append metadata: %w", err)
	}
	return nil
}

// History reads the full training metadata history, oldest first.
// Returns fs.ErrNotExist-wrapped error when no history exists.
func (s *Store) History() ([]Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("store: read metadata: %w", err)
	}
	var history []Metadata
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("store: parse metadata: %w", err)
	}
	return history, nil
}

// writeAtomic writes data to name via a temp file and rename, fsyncing
// before the swap so a concurrent loader never observes a partial
// artifact.
func (s *Store) writeAtomic(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}

package ml

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"gorgonia.org/tensor"
)

// ModelStore persists parameter snapshots between process runs.
type ModelStore interface {
	// Load returns the stored parameters, or ok=false when nothing has
	// been persisted yet.
	Load() (params *Parameters, ok bool, err error)
	Save(params *Parameters) error
}

const weightsFile = "weights.gob"

// FileModelStore keeps the weight tensors gob-encoded in a single file
// under the model directory.
type FileModelStore struct {
	dir string
}

// NewFileModelStore creates a file-backed model store rooted at dir.
func NewFileModelStore(dir string) *FileModelStore {
	return &FileModelStore{dir: dir}
}

// Load reads the persisted weights.
func (s *FileModelStore) Load() (*Parameters, bool, error) {
	f, err := os.Open(filepath.Join(s.dir, weightsFile))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	params := &Parameters{}
	for _, w := range []**tensor.Dense{&params.W0, &params.W1, &params.W2, &params.W3} {
		if err := dec.Decode(w); err != nil {
			return nil, false, fmt.Errorf("failed to decode model weights: %w", err)
		}
	}
	return params, true, nil
}

// Save writes the weights atomically: encode to a temp file in the same
// directory, then rename over the previous snapshot.
func (s *FileModelStore) Save(params *Parameters) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, weightsFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create model temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := gob.NewEncoder(tmp)
	for _, w := range []*tensor.Dense{params.W0, params.W1, params.W2, params.W3} {
		if err := enc.Encode(w); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode model weights: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, weightsFile)); err != nil {
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	return nil
}

package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ignitionAdapters/internal/storage/postgres"
)

// Checkpoint tracks the last processed block of a pool set.
type Checkpoint struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	Fingerprint        string `json:"fingerprint"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

// CheckpointStore persists checkpoints.
type CheckpointStore interface {
	Load(ctx context.Context) (Checkpoint, bool, error)
	Save(ctx context.Context, cp Checkpoint) error
}

// FileCheckpointStore keeps the checkpoint in a JSON file.
type FileCheckpointStore struct {
	path string
}

func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

func (c *FileCheckpointStore) Load(context.Context) (Checkpoint, bool, error) {
	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return Checkpoint{}, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}

	return cp, true, nil
}

// Save writes the checkpoint through a temporary file and a rename.
func (c *FileCheckpointStore) Save(_ context.Context, cp Checkpoint) error {
	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	if cp.UpdatedAt == "" {
		cp.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	return nil
}

// StateStore is the subset of *postgres.Store used for checkpoints.
type StateStore interface {
	LoadState(ctx context.Context, name string) (postgres.State, bool, error)
	SaveState(ctx context.Context, name string, state postgres.State) error
}

// PostgresCheckpointStore keeps the checkpoint in the indexer_state table.
type PostgresCheckpointStore struct {
	store StateStore
	name  string
}

func NewPostgresCheckpointStore(store StateStore, name string) *PostgresCheckpointStore {
	return &PostgresCheckpointStore{store: store, name: name}
}

func (c *PostgresCheckpointStore) Load(ctx context.Context) (Checkpoint, bool, error) {
	state, ok, err := c.store.LoadState(ctx, c.name)
	if err != nil || !ok {
		return Checkpoint{}, ok, err
	}
	return Checkpoint{LastProcessedBlock: state.LastProcessedBlock, Fingerprint: state.Fingerprint}, true, nil
}

func (c *PostgresCheckpointStore) Save(ctx context.Context, cp Checkpoint) error {
	return c.store.SaveState(ctx, c.name, postgres.State{
		LastProcessedBlock: cp.LastProcessedBlock,
		Fingerprint:        cp.Fingerprint,
	})
}

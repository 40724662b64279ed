package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"ignitionAdapters/internal/model"
)

// ErrPoolNotFound is returned for a pool missing from the state file.
var ErrPoolNotFound = errors.New("pool not found")

const maxStateLine = 1 << 20

// BinPoolStateFile serves CaviarNine pool states exported as JSONL, one
// model.BinPoolState per line. A later line for the same pool wins.
type BinPoolStateFile struct {
	path string

	mu     sync.RWMutex
	states map[string]model.BinPoolState
}

// OpenBinPoolStateFile loads path.
func OpenBinPoolStateFile(path string) (*BinPoolStateFile, error) {
	f := &BinPoolStateFile{path: path}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reload re-reads the file, replacing the loaded states only on success.
func (f *BinPoolStateFile) Reload() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open pool states: %w", err)
	}
	defer file.Close()

	states := make(map[string]model.BinPoolState)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStateLine)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var state model.BinPoolState
		if err := json.Unmarshal(line, &state); err != nil {
			return fmt.Errorf("parse pool state line %d: %w", lineNo, err)
		}
		if state.Pool == "" {
			return fmt.Errorf("parse pool state line %d: missing pool", lineNo)
		}
		states[state.Pool] = state
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read pool states: %w", err)
	}

	f.mu.Lock()
	f.states = states
	f.mu.Unlock()
	return nil
}

// ReadBinPool returns the state of pool.
func (f *BinPoolStateFile) ReadBinPool(_ context.Context, pool string) (model.BinPoolState, error) {
	f.mu.RLock()
	state, ok := f.states[pool]
	f.mu.RUnlock()
	if !ok {
		return model.BinPoolState{}, fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
	}
	return state, nil
}

// States returns every loaded state ordered by pool address.
func (f *BinPoolStateFile) States() []model.BinPoolState {
	f.mu.RLock()
	out := make([]model.BinPoolState, 0, len(f.states))
	for _, state := range f.states {
		out = append(out, state)
	}
	f.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Pool < out[j].Pool })
	return out
}

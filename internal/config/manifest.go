package config

import (
	"os"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"

	stderrors "github.com/standardbeagle/shardidx/internal/errors"
)

// ShardFile records one mapper-produced run file, as printed by the "=>"
// marker lines of spec.md §6.2.
type ShardFile struct {
	Filename string `toml:"filename"`
	ShardIdx uint32 `toml:"shard_idx"`
	Bytes    int64  `toml:"bytes"`
}

// Manifest is the optional sidecar a mapper can write alongside its run
// files, so a reducer driver can discover its inputs without re-parsing
// stdout. Not part of the original wire protocol; an additive convenience
// for orchestration.
type Manifest struct {
	RunID       string      `toml:"run_id"`
	MasterID    string      `toml:"master_id"`
	WorkerID    string      `toml:"worker_id"`
	NumReducers uint32      `toml:"num_reducers"`
	Files       []ShardFile `toml:"files"`
}

// NewRunID mints a fresh identifier for one mapper invocation, recorded in
// its manifest so that manifests from retries of the same (master-id,
// worker-id) pair can be told apart.
func NewRunID() string {
	return uuid.NewString()
}

// WriteManifest serializes m as TOML to path.
func WriteManifest(path string, m *Manifest) error {
	b, err := toml.Marshal(m)
	if err != nil {
		return stderrors.NewFileError("marshal-manifest", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return stderrors.NewFileError("write", path, err)
	}
	return nil
}

// ReadManifest loads a manifest previously written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, stderrors.NewFileError("read", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(b, &m); err != nil {
		return nil, stderrors.NewFileError("unmarshal-manifest", path, err)
	}
	return &m, nil
}

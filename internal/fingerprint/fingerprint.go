// Package fingerprint hashes the observed state of a table so a plan can be
// checked against the database before it is applied.
package fingerprint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/alexmaris/gribble/ir"
)

// TableFingerprint represents a fingerprint of a table's columns and indexes
type TableFingerprint struct {
	Hash string `json:"hash"` // SHA256 of the normalized table state
}

type tableState struct {
	Columns []ir.Column `json:"columns"`
	Indexes []ir.Index  `json:"indexes"`
}

// ComputeFingerprint generates a fingerprint for the columns and indexes read
// from a table. A table that does not exist has neither.
func ComputeFingerprint(columns []ir.Column, indexes []ir.Index) (*TableFingerprint, error) {
	state := tableState{}
	if len(columns) > 0 {
		state.Columns = columns
	}
	if len(indexes) > 0 {
		state.Indexes = indexes
	}

	hash, err := hashObject(state)
	if err != nil {
		return nil, fmt.Errorf("failed to compute table hash: %w", err)
	}

	return &TableFingerprint{
		Hash: hash,
	}, nil
}

// hashObject computes a SHA256 hash of any object
func hashObject(obj any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// String returns a human-readable representation of the fingerprint
func (f *TableFingerprint) String() string {
	if len(f.Hash) >= 8 {
		return fmt.Sprintf("Table fingerprint: %s", f.Hash[:8])
	}
	return fmt.Sprintf("Table fingerprint: %s", f.Hash)
}

// Package storage provides a persistent audit ledger of scoring runs
// using BoltDB. Each run records the batch identifier, the record count,
// and the per-record scored output, keyed for time-ordered scans. Metrics
// reports are not stored; their history lives in the dashboard, not here.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/scoring"
)

const runsBucket = "score_runs"

// Run is one recorded scoring run.
type Run struct {
	BatchID  string           `json:"batch_id"`
	ScoredAt time.Time        `json:"scored_at"`
	Records  []scoring.Scored `json:"records"`
}

// Store is the BoltDB-backed run ledger.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the ledger database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "creditmon.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun appends a scoring run to the ledger. The key combines batch id
// and timestamp so repeated runs over the same batch stay distinct.
func (s *Store) RecordRun(batchID string, records []scoring.Scored) error {
	run := Run{BatchID: batchID, ScoredAt: time.Now().UTC(), Records: records}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}

		key := fmt.Sprintf("%s_%d", batchID, run.ScoredAt.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// Runs returns every recorded run for a batch id, oldest first.
func (s *Store) Runs(batchID string) ([]Run, error) {
	var runs []Run
	prefix := []byte(batchID + "_")

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("unmarshal run %s: %w", k, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	// ErrRecordNotFound is returned when a transfer is not in the journal.
	ErrRecordNotFound = errors.New("transfer record not found")
)

var (
	transfersBucket = []byte("transfers")
)

// TransferState is the lifecycle state recorded for a transfer.
type TransferState string

const (
	StateQueued    TransferState = "Queued"
	StateActive    TransferState = "Active"
	StateSucceeded TransferState = "Succeeded"
	StateFailed    TransferState = "Failed"
)

// TransferRecord is one journal entry. The journal is an audit trail only;
// it is never replayed into the queue.
type TransferRecord struct {
	ID          string        `json:"id"`
	Profile     string        `json:"profile"`
	SourcePath  string        `json:"source_path"`
	Destination string        `json:"destination"`
	State       TransferState `json:"state"`
	ExitCode    int           `json:"exit_code"`
	Error       string        `json:"error,omitempty"`
	QueuedAt    time.Time     `json:"queued_at"`
	StartedAt   time.Time     `json:"started_at,omitzero"`
	FinishedAt  time.Time     `json:"finished_at,omitzero"`
}

// Store define the interface for the transfer journal.
type Store interface {
	SaveRecord(rec *TransferRecord) error
	GetRecord(id string) (*TransferRecord, error)
	ListRecords() ([]*TransferRecord, error)
	Close() error
}

// BoltStore is a Store implementation backed by bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore at the given path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(transfersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create transfers bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveRecord writes rec, replacing any earlier version with the same ID.
func (s *BoltStore) SaveRecord(rec *TransferRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if err := tx.Bucket(transfersBucket).Put([]byte(rec.ID), data); err != nil {
			return fmt.Errorf("failed to put record: %w", err)
		}
		return nil
	})
}

// GetRecord retrieves a transfer from the journal.
func (s *BoltStore) GetRecord(id string) (*TransferRecord, error) {
	var rec TransferRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(transfersBucket).Get([]byte(id))
		if data == nil {
			return ErrRecordNotFound
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords returns every journaled transfer in key order.
func (s *BoltStore) ListRecords() ([]*TransferRecord, error) {
	var out []*TransferRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(transfersBucket).ForEach(func(_, data []byte) error {
			var rec TransferRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			out = append(out, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

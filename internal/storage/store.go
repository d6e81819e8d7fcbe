package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	bolt "go.etcd.io/bbolt"
)

var (
	preferencesBucket = []byte("preferences")
	metaBucket        = []byte("metadata")

	preferencesKey = []byte("current")
	schemaKey      = []byte("schema_version")
)

const schemaVersion = "1"

type Store struct {
	db         *bolt.DB
	maxRetries uint64
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{preferencesBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return tx.Bucket(metaBucket).Put(schemaKey, []byte(schemaVersion))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, maxRetries: 3}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the file backing the store.
func (s *Store) Path() string {
	return s.db.Path()
}

// LoadPreferences returns the stored preferences. Keys missing from the
// stored record, or a missing record, fall back to DefaultPreferences.
func (s *Store) LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(preferencesBucket).Get(preferencesKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &prefs)
	})
	if err != nil {
		return DefaultPreferences(), fmt.Errorf("loading preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences writes p, retrying transient write failures with
// exponential backoff.
func (s *Store) SavePreferences(p Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 2 * time.Second

	op := func() error {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(preferencesBucket).Put(preferencesKey, data)
		})
		if errors.Is(err, bolt.ErrDatabaseNotOpen) || errors.Is(err, bolt.ErrDatabaseReadOnly) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(b, s.maxRetries)); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// SchemaVersion reports the layout version recorded in the metadata bucket.
func (s *Store) SchemaVersion() (string, error) {
	var v string
	err := s.db.View(func(tx *bolt.Tx) error {
		v = string(tx.Bucket(metaBucket).Get(schemaKey))
		return nil
	})
	return v, err
}

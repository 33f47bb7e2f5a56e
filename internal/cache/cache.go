// Package cache is a short-lived key/value store for upstream response bodies.
package cache

import (
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Options struct {
	// Dir is the badger directory; ignored when InMemory is set.
	Dir      string
	InMemory bool
	// TTL is how long an entry lives. Zero disables the cache entirely.
	TTL    time.Duration
	Logger badger.Logger
}

type Store struct {
	db  *badger.DB
	ttl time.Duration
}

func Open(opts Options) (*Store, error) {
	if opts.TTL <= 0 {
		log.Info().Msg("Response Cache Disabled")
		return &Store{}, nil
	}

	options := badger.DefaultOptions(opts.Dir).WithLogger(opts.Logger)
	if opts.InMemory {
		options = badger.DefaultOptions("").WithInMemory(true).WithLogger(opts.Logger)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache")
	}

	log.Info().Str("dir", opts.Dir).Bool("inMemory", opts.InMemory).Str("ttl", opts.TTL.String()).Msg("Response Cache Opened")
	return &Store{db: db, ttl: opts.TTL}, nil
}

// Get returns the value stored under key. Expired and missing keys are misses.
func (s *Store) Get(key string) ([]byte, bool) {
	if s.db == nil {
		return nil, false
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))

		// Check if key was found
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "failed to get cache entry")
		}

		value, err = item.ValueCopy(nil)
		return errors.Wrap(err, "failed to read cache entry")
	})

	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to load from cache")
		return nil, false
	}

	return value, value != nil
}

// Set stores value under key for the configured TTL. Failures are logged only.
func (s *Store) Set(key string, value []byte) {
	if s.db == nil {
		return
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(s.ttl))
	})

	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to save to cache")
	}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return errors.Wrap(s.db.Close(), "failed to close cache")
}

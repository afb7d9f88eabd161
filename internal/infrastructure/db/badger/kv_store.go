package badgerdb

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/timshannon/badgerhold/v4"
)

const kvStoreDir = "kv"

type entry struct {
	Key       string `badgerhold:"key"`
	Value     string
	UpdatedAt int64
}

type kvStore struct {
	store *badgerhold.Store
	stop  chan struct{}
}

// NewKVStore expects the base directory and an optional badger.Logger.
// An empty base directory opens an in-memory database.
func NewKVStore(config ...interface{}) (ports.KVStore, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, kvStoreDir)
	}

	stop := make(chan struct{})
	store, err := createDB(dir, logger, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to open kv store: %s", err)
	}

	return &kvStore{store, stop}, nil
}

func (s *kvStore) Get(key string) (string, bool, error) {
	var e entry
	if err := s.store.Get(key, &e); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return e.Value, true, nil
}

func (s *kvStore) Set(key, value string) error {
	e := entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().Unix(),
	}
	return s.store.Upsert(key, e)
}

func (s *kvStore) Remove(key string) error {
	if err := s.store.Delete(key, entry{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *kvStore) Close() error {
	close(s.stop)
	return s.store.Close()
}

func createDB(dbDir string, logger badger.Logger, stop <-chan struct{}) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
						if logger != nil {
							logger.Errorf("%s", err)
						}
					}
				}
			}
		}()
	}

	return db, nil
}

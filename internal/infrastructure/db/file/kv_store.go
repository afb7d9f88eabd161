package filedb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
)

const kvStoreFilename = "state.json"

type kvStore struct {
	filePath string
	lock     *sync.Mutex
}

func NewKVStore(config ...interface{}) (ports.KVStore, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok || len(baseDir) <= 0 {
		return nil, fmt.Errorf("missing base directory")
	}

	datadir := cleanAndExpandPath(baseDir)
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return nil, fmt.Errorf("failed to initialize datadir: %s", err)
	}
	filePath := filepath.Join(datadir, kvStoreFilename)

	store := &kvStore{filePath, &sync.Mutex{}}

	if _, err := store.open(); err != nil {
		return nil, fmt.Errorf("failed to open store: %s", err)
	}

	return store, nil
}

func (s *kvStore) Get(key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := s.open()
	if err != nil {
		return "", false, err
	}
	value, ok := data[key]
	return value, ok, nil
}

func (s *kvStore) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := s.open()
	if err != nil {
		return err
	}
	data[key] = value

	if err := s.write(data); err != nil {
		return fmt.Errorf("failed to write to store: %s", err)
	}
	return nil
}

func (s *kvStore) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := s.open()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)

	if err := s.write(data); err != nil {
		return fmt.Errorf("failed to write to store: %s", err)
	}
	return nil
}

func (s *kvStore) Close() error {
	return nil
}

func (s *kvStore) open() (map[string]string, error) {
	file, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to open store: %s", err)
		}
		data := map[string]string{}
		if err := s.write(data); err != nil {
			return nil, fmt.Errorf("failed to initialize store: %s", err)
		}
		return data, nil
	}

	data := map[string]string{}
	if len(file) <= 0 {
		return data, nil
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("failed to read file store: %s", err)
	}
	return data, nil
}

// write swaps in the new content with a rename.
func (s *kvStore) write(data map[string]string) error {
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, buf, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}

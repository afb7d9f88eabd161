package inmemorydb

import (
	"sync"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
)

type kvStore struct {
	data map[string]string
	lock *sync.RWMutex
}

func NewKVStore(_ ...interface{}) (ports.KVStore, error) {
	return &kvStore{
		data: make(map[string]string),
		lock: &sync.RWMutex{},
	}, nil
}

func (s *kvStore) Get(key string) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.data[key]
	return value, ok, nil
}

func (s *kvStore) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.data[key] = value
	return nil
}

func (s *kvStore) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.data, key)
	return nil
}

func (s *kvStore) Close() error {
	return nil
}

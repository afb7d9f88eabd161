package db

import (
	"fmt"
	"sort"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	filedb "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db/file"
	inmemorydb "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db/inmemory"
	log "github.com/sirupsen/logrus"
)

const (
	InMemoryStore = "inmemory"
	FileStore     = "file"
)

type kvStoreFactory func(...interface{}) (ports.KVStore, error)

var kvStoreTypes = map[string]kvStoreFactory{
	InMemoryStore: inmemorydb.NewKVStore,
	FileStore:     filedb.NewKVStore,
}

// SupportedStoreTypes lists the registered backend names.
func SupportedStoreTypes() []string {
	types := make([]string, 0, len(kvStoreTypes))
	for t := range kvStoreTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func IsSupportedStoreType(storeType string) bool {
	_, ok := kvStoreTypes[storeType]
	return ok
}

type ServiceConfig struct {
	StoreType   string
	StoreConfig []interface{}

	Now func() time.Time
}

type service struct {
	store    ports.KVStore
	history  domain.HistoryRepository
	pendings domain.PendingRedeemRepository
}

// NewKVStore opens the backend registered under storeType.
func NewKVStore(storeType string, config ...interface{}) (ports.KVStore, error) {
	factory, ok := kvStoreTypes[storeType]
	if !ok {
		return nil, fmt.Errorf("invalid store type: %s", storeType)
	}
	store, err := factory(config...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s store: %w", storeType, err)
	}
	return store, nil
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	store, err := NewKVStore(config.StoreType, config.StoreConfig...)
	if err != nil {
		return nil, err
	}
	svc, err := NewServiceWithStore(store, config.Now)
	if err != nil {
		// nolint
		store.Close()
		return nil, err
	}
	return svc, nil
}

// NewServiceWithStore builds the repositories on top of an already opened
// store, which is then owned by the returned manager.
func NewServiceWithStore(
	store ports.KVStore, now func() time.Time,
) (ports.RepoManager, error) {
	history, err := NewHistoryRepository(store, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create history repository: %w", err)
	}
	pendings, err := NewPendingRedeemRepository(store, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending redeem repository: %w", err)
	}

	return &service{store, history, pendings}, nil
}

func (s *service) History() domain.HistoryRepository {
	return s.history
}

func (s *service) Pendings() domain.PendingRedeemRepository {
	return s.pendings
}

func (s *service) Store() ports.KVStore {
	return s.store
}

func (s *service) Close() {
	if err := s.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close kv store")
	}
}

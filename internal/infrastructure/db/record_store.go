package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const envelopeVersion = 1

// envelope is the persisted shape of a record list. Lists written before
// versioning are bare JSON arrays and are read as version 0.
type envelope[T any] struct {
	Version int `json:"version"`
	Records []T `json:"records"`
}

type RecordStoreConfig[T any] struct {
	Store     ports.KVStore
	Key       string
	RecordKey func(T) string
	Timestamp func(T) time.Time
	// Capacity bounds the number of records, 0 means unbounded.
	Capacity int
	// MaxAge expires records at least this old, 0 disables expiry.
	MaxAge time.Duration
	Now    func() time.Time
}

// RecordStore is a bounded, deduplicated, most-recent-first list of records
// persisted as a whole under a single key. Storage failures are logged and
// never returned, the in-memory list stays authoritative.
type RecordStore[T any] struct {
	cfg RecordStoreConfig[T]

	lock    *sync.RWMutex
	records []T
}

func NewRecordStore[T any](cfg RecordStoreConfig[T]) (*RecordStore[T], error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("missing kv store")
	}
	if len(cfg.Key) <= 0 {
		return nil, fmt.Errorf("missing storage key")
	}
	if cfg.RecordKey == nil {
		return nil, fmt.Errorf("missing record key extractor")
	}
	if cfg.MaxAge > 0 && cfg.Timestamp == nil {
		return nil, fmt.Errorf("missing record timestamp extractor")
	}
	if cfg.Capacity < 0 {
		return nil, fmt.Errorf("invalid capacity %d", cfg.Capacity)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &RecordStore[T]{
		cfg:     cfg,
		lock:    &sync.RWMutex{},
		records: make([]T, 0),
	}
	s.Load()
	return s, nil
}

// Load replaces the in-memory list with the persisted one, dropping expired
// records. If any record expired the pruned list is persisted right away.
func (s *RecordStore[T]) Load() []T {
	s.lock.Lock()
	defer s.lock.Unlock()

	records, err := s.read()
	if err != nil {
		log.WithError(err).Warnf("failed to load records from %s", s.cfg.Key)
		records = make([]T, 0)
	}

	kept := s.pruneExpired(records, s.cfg.Now())
	s.records = kept
	if len(kept) != len(records) {
		log.Debugf("pruned %d expired records from %s", len(records)-len(kept), s.cfg.Key)
		s.persist()
	}

	return s.list()
}

func (s *RecordStore[T]) List() []T {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.list()
}

// Add inserts record at the front, replacing any record with the same key,
// and truncates the list to capacity.
func (s *RecordStore[T]) Add(record T) {
	s.lock.Lock()
	defer s.lock.Unlock()

	key := s.cfg.RecordKey(record)
	records := make([]T, 0, len(s.records)+1)
	records = append(records, record)
	for _, r := range s.records {
		if s.cfg.RecordKey(r) != key {
			records = append(records, r)
		}
	}
	if s.cfg.Capacity > 0 && len(records) > s.cfg.Capacity {
		records = records[:s.cfg.Capacity]
	}

	s.records = records
	s.persist()
}

// Remove deletes the record with the given key, if any.
func (s *RecordStore[T]) Remove(key string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	records := make([]T, 0, len(s.records))
	for _, r := range s.records {
		if s.cfg.RecordKey(r) != key {
			records = append(records, r)
		}
	}
	if len(records) == len(s.records) {
		return
	}

	s.records = records
	s.persist()
}

func (s *RecordStore[T]) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.records = make([]T, 0)
	if err := s.cfg.Store.Remove(s.cfg.Key); err != nil {
		log.WithError(err).Warnf("failed to clear records in %s", s.cfg.Key)
	}
}

func (s *RecordStore[T]) list() []T {
	return append(make([]T, 0, len(s.records)), s.records...)
}

func (s *RecordStore[T]) pruneExpired(records []T, now time.Time) []T {
	if s.cfg.MaxAge <= 0 {
		return records
	}
	kept := make([]T, 0, len(records))
	for _, r := range records {
		if now.Sub(s.cfg.Timestamp(r)) < s.cfg.MaxAge {
			kept = append(kept, r)
		}
	}
	return kept
}

func (s *RecordStore[T]) read() ([]T, error) {
	value, ok, err := s.cfg.Store.Get(s.cfg.Key)
	if err != nil {
		return nil, err
	}
	if !ok || len(value) <= 0 {
		return make([]T, 0), nil
	}
	return decodeRecords[T]([]byte(value))
}

func (s *RecordStore[T]) persist() {
	buf, err := json.Marshal(envelope[T]{envelopeVersion, s.records})
	if err != nil {
		log.WithError(err).Warnf("failed to encode records for %s", s.cfg.Key)
		return
	}
	if err := s.cfg.Store.Set(s.cfg.Key, string(buf)); err != nil {
		log.WithError(err).Warnf("failed to persist records to %s", s.cfg.Key)
	}
}

func decodeRecords[T any](buf []byte) ([]T, error) {
	buf = bytes.TrimSpace(buf)
	if len(buf) > 0 && buf[0] == '[' {
		records := make([]T, 0)
		if err := json.Unmarshal(buf, &records); err != nil {
			return nil, fmt.Errorf("failed to decode legacy records: %w", err)
		}
		return records, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(buf, &env); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if env.Version > envelopeVersion {
		return nil, fmt.Errorf("unsupported records version %d", env.Version)
	}
	if env.Records == nil {
		env.Records = make([]T, 0)
	}
	return env.Records, nil
}

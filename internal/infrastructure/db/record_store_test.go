package db_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db"
	inmemorydb "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db/inmemory"
	"github.com/stretchr/testify/require"
)

type clock struct {
	lock sync.Mutex
	now  time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

// failingStore fails every operation after the initial read.
type failingStore struct {
	sets int
}

func (s *failingStore) Get(string) (string, bool, error) {
	return "", false, errors.New("read failure")
}

func (s *failingStore) Set(string, string) error {
	s.sets++
	return errors.New("quota exceeded")
}

func (s *failingStore) Remove(string) error {
	return errors.New("write failure")
}

func (s *failingStore) Close() error { return nil }

func txRecord(digest string, action domain.Action, at time.Time) domain.TxRecord {
	return domain.NewSuccessRecord(domain.RecordArgs{
		Digest:   digest,
		Network:  domain.Mainnet,
		BrandKey: domain.BtcUSDCBrandKey,
		Action:   action,
	}, at)
}

func pending(digest string, at time.Time) domain.PendingRedeem {
	return domain.NewPendingRedeem(digest, domain.Mainnet, domain.DefaultBrand(), "1 btcUSDC", at)
}

func digests(records []domain.TxRecord) []string {
	list := make([]string, 0, len(records))
	for _, r := range records {
		list = append(list, r.Digest)
	}
	return list
}

func TestHistoryRepository(t *testing.T) {
	t.Parallel()

	t.Run("dedup and order", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()

		history, err := db.NewHistoryRepository(store, c.Now)
		require.NoError(t, err)
		require.Empty(t, history.List())

		history.Add(txRecord("a", domain.ActionMint, c.Now()))
		c.Advance(time.Second)
		history.Add(txRecord("b", domain.ActionRedeem, c.Now()))
		c.Advance(time.Second)
		history.Add(txRecord("a", domain.ActionClaim, c.Now()))

		list := history.List()
		require.Equal(t, []string{"a", "b"}, digests(list))
		require.Equal(t, domain.ActionClaim, list[0].Action)
	})

	t.Run("capacity", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()

		history, err := db.NewHistoryRepository(store, c.Now)
		require.NoError(t, err)

		for i := 0; i < 11; i++ {
			history.Add(txRecord(fmt.Sprintf("d%d", i), domain.ActionMint, c.Now()))
			c.Advance(time.Second)
		}

		list := history.List()
		require.Len(t, list, db.MaxHistory)
		require.Equal(t, "d10", list[0].Digest)
		require.Equal(t, "d1", list[len(list)-1].Digest)
		require.NotContains(t, digests(list), "d0")
	})

	t.Run("reload", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()

		history, err := db.NewHistoryRepository(store, c.Now)
		require.NoError(t, err)
		history.Add(txRecord("a", domain.ActionMint, c.Now()))
		history.Add(txRecord("b", domain.ActionMint, c.Now()))

		reloaded, err := db.NewHistoryRepository(store, c.Now)
		require.NoError(t, err)
		require.Equal(t, history.List(), reloaded.List())

		raw, ok, err := store.Get(db.HistoryKey)
		require.NoError(t, err)
		require.True(t, ok)
		require.Contains(t, raw, `"version":1`)
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()

		history, err := db.NewHistoryRepository(store, c.Now)
		require.NoError(t, err)
		history.Add(txRecord("a", domain.ActionMint, c.Now()))

		history.Clear()
		require.Empty(t, history.List())

		_, ok, err := store.Get(db.HistoryKey)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("legacy array", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()

		legacy := []domain.TxRecord{
			txRecord("x", domain.ActionRedeem, c.Now()),
			txRecord("y", domain.ActionMint, c.Now()),
		}
		buf, err := json.Marshal(legacy)
		require.NoError(t, err)
		require.NoError(t, store.Set(db.HistoryKey, string(buf)))

		history, err := db.NewHistoryRepository(store, c.Now)
		require.NoError(t, err)
		require.Equal(t, []string{"x", "y"}, digests(history.List()))
	})

	t.Run("corrupt data", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		require.NoError(t, store.Set(db.HistoryKey, "{not json"))

		history, err := db.NewHistoryRepository(store, time.Now)
		require.NoError(t, err)
		require.Empty(t, history.List())

		history.Add(txRecord("a", domain.ActionMint, time.Now()))
		require.Len(t, history.List(), 1)
	})

	t.Run("storage failures", func(t *testing.T) {
		t.Parallel()

		store := &failingStore{}
		history, err := db.NewHistoryRepository(store, time.Now)
		require.NoError(t, err)
		require.Empty(t, history.List())

		history.Add(txRecord("a", domain.ActionMint, time.Now()))
		require.Equal(t, []string{"a"}, digests(history.List()))
		require.Equal(t, 1, store.sets)

		history.Clear()
		require.Empty(t, history.List())
	})
}

func TestPendingRedeemRepository(t *testing.T) {
	t.Parallel()

	t.Run("add and remove", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()

		pendings, err := db.NewPendingRedeemRepository(store, c.Now)
		require.NoError(t, err)

		pendings.Add(pending("a", c.Now()))
		pendings.Add(pending("b", c.Now()))
		pendings.Add(pending("a", c.Now()))
		require.Len(t, pendings.List(), 2)
		require.Equal(t, "a", pendings.List()[0].Digest)

		pendings.Remove("a")
		require.Len(t, pendings.List(), 1)

		pendings.Remove("missing")
		require.Len(t, pendings.List(), 1)

		pendings.Clear()
		require.Empty(t, pendings.List())
	})

	t.Run("expiry", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()
		start := c.Now()

		pendings, err := db.NewPendingRedeemRepository(store, c.Now)
		require.NoError(t, err)

		pendings.Add(pending("old", start.Add(-8*24*time.Hour)))
		pendings.Add(pending("edge", start.Add(-db.PendingsMaxAge)))
		pendings.Add(pending("fresh", start.Add(-24*time.Hour)))
		require.Len(t, pendings.List(), 3)

		list := pendings.(interface {
			Load() []domain.PendingRedeem
		}).Load()
		require.Len(t, list, 1)
		require.Equal(t, "fresh", list[0].Digest)

		reloaded, err := db.NewPendingRedeemRepository(store, c.Now)
		require.NoError(t, err)
		require.Len(t, reloaded.List(), 1)

		raw, _, err := store.Get(db.PendingsKey)
		require.NoError(t, err)
		require.NotContains(t, raw, "old")
	})

	t.Run("expiry on reload", func(t *testing.T) {
		t.Parallel()

		store, err := inmemorydb.NewKVStore()
		require.NoError(t, err)
		c := newClock()

		pendings, err := db.NewPendingRedeemRepository(store, c.Now)
		require.NoError(t, err)
		pendings.Add(pending("a", c.Now()))

		c.Advance(6 * 24 * time.Hour)
		reloaded, err := db.NewPendingRedeemRepository(store, c.Now)
		require.NoError(t, err)
		require.Len(t, reloaded.List(), 1)

		c.Advance(24 * time.Hour)
		reloaded, err = db.NewPendingRedeemRepository(store, c.Now)
		require.NoError(t, err)
		require.Empty(t, reloaded.List())
	})
}

func TestNewRecordStore(t *testing.T) {
	t.Parallel()

	store, err := inmemorydb.NewKVStore()
	require.NoError(t, err)

	_, err = db.NewRecordStore(db.RecordStoreConfig[string]{Store: store})
	require.Error(t, err)

	_, err = db.NewRecordStore(db.RecordStoreConfig[string]{
		Store: store, Key: "k", RecordKey: func(s string) string { return s }, MaxAge: time.Hour,
	})
	require.Error(t, err)

	rs, err := db.NewRecordStore(db.RecordStoreConfig[string]{
		Store: store, Key: "k", RecordKey: func(s string) string { return s }, Capacity: 2,
	})
	require.NoError(t, err)
	rs.Add("a")
	rs.Add("b")
	rs.Add("c")
	require.Equal(t, []string{"c", "b"}, rs.List())

	require.NoError(t, store.Set("k", `{"version":2,"records":["z"]}`))
	require.Empty(t, rs.Load())
}

//go:build !js

package db

import (
	badgerdb "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db/badger"
	sqlitedb "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db/sqlite"
)

const (
	BadgerStore = "badger"
	SqliteStore = "sqlite"
)

func init() {
	kvStoreTypes[BadgerStore] = badgerdb.NewKVStore
	kvStoreTypes[SqliteStore] = sqlitedb.NewKVStore
}

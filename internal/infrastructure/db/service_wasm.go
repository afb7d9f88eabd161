//go:build js && wasm

package db

import browserdb "github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/db/browser"

const BrowserStore = browserdb.LocalStorageStore

func init() {
	kvStoreTypes[BrowserStore] = browserdb.NewKVStore
}

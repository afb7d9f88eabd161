//go:build js && wasm

package browserdb

import (
	"fmt"
	"syscall/js"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
)

const LocalStorageStore = "localstorage"

type localStorageStore struct {
	store js.Value
}

func NewKVStore(_ ...interface{}) (ports.KVStore, error) {
	store := js.Global().Get("localStorage")
	if store.IsUndefined() || store.IsNull() {
		return nil, fmt.Errorf("localStorage not available")
	}
	return &localStorageStore{store}, nil
}

func (s *localStorageStore) Get(key string) (value string, found bool, err error) {
	defer recoverJSError(&err)

	v := s.store.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

// Set fails when the browser refuses the write, typically on quota.
func (s *localStorageStore) Set(key, value string) (err error) {
	defer recoverJSError(&err)

	s.store.Call("setItem", key, value)
	return nil
}

func (s *localStorageStore) Remove(key string) (err error) {
	defer recoverJSError(&err)

	s.store.Call("removeItem", key)
	return nil
}

func (s *localStorageStore) Close() error {
	return nil
}

func recoverJSError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("localStorage: %v", r)
	}
}

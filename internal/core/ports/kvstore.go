package ports

// KVStore is a synchronous string key-value store backing durable records.
// Get reports false when the key is absent.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

package ports

import "github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"

type RepoManager interface {
	History() domain.HistoryRepository
	Pendings() domain.PendingRedeemRepository
	Store() KVStore
	Close()
}

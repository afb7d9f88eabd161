package db

import (
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/ports"
)

const (
	HistoryKey  = "oneclick_tx_history"
	PendingsKey = "oneclick_pending_redeems"

	MaxHistory     = 10
	PendingsMaxAge = 7 * 24 * time.Hour
)

type historyRepository struct {
	*RecordStore[domain.TxRecord]
}

func NewHistoryRepository(
	store ports.KVStore, now func() time.Time,
) (domain.HistoryRepository, error) {
	rs, err := NewRecordStore(RecordStoreConfig[domain.TxRecord]{
		Store:     store,
		Key:       HistoryKey,
		RecordKey: func(r domain.TxRecord) string { return r.Digest },
		Timestamp: func(r domain.TxRecord) time.Time { return r.CreatedAt() },
		Capacity:  MaxHistory,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	return &historyRepository{rs}, nil
}

type pendingRedeemRepository struct {
	*RecordStore[domain.PendingRedeem]
}

func NewPendingRedeemRepository(
	store ports.KVStore, now func() time.Time,
) (domain.PendingRedeemRepository, error) {
	rs, err := NewRecordStore(RecordStoreConfig[domain.PendingRedeem]{
		Store:     store,
		Key:       PendingsKey,
		RecordKey: func(p domain.PendingRedeem) string { return p.Digest },
		Timestamp: func(p domain.PendingRedeem) time.Time { return p.SubmittedAt() },
		MaxAge:    PendingsMaxAge,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	return &pendingRedeemRepository{rs}, nil
}

package domain

// HistoryRepository keeps the most recent transaction records, newest
// first, one per digest.
type HistoryRepository interface {
	List() []TxRecord
	Add(record TxRecord)
	Clear()
}

// PendingRedeemRepository keeps outstanding T+1 redeems, newest first,
// dropping those older than its retention window.
type PendingRedeemRepository interface {
	List() []PendingRedeem
	Add(pending PendingRedeem)
	Remove(digest string)
	Clear()
}

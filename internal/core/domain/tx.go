package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionMint   Action = "mint"
	ActionRedeem Action = "redeem"
	ActionClaim  Action = "claim"

	TxSuccess TxStatus = "success"
	TxError   TxStatus = "error"
)

type Action string

func (a Action) String() string {
	return string(a)
}

func (a Action) IsValid() bool {
	switch a {
	case ActionMint, ActionRedeem, ActionClaim:
		return true
	default:
		return false
	}
}

type TxStatus string

func (s TxStatus) String() string {
	return string(s)
}

// TxRecord is a terminal outcome of a mint, redeem or claim. Records are
// identified by their digest.
type TxRecord struct {
	ID       string   `json:"id"`
	Time     int64    `json:"time"`
	Network  string   `json:"network"`
	BrandKey string   `json:"brandKey"`
	Action   Action   `json:"action"`
	Digest   string   `json:"digest"`
	Status   TxStatus `json:"status"`
	Amount   string   `json:"amount,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func (r TxRecord) CreatedAt() time.Time {
	return time.UnixMilli(r.Time)
}

func (r TxRecord) IsSuccess() bool {
	return r.Status == TxSuccess
}

type RecordArgs struct {
	Digest   string
	Network  Network
	BrandKey string
	Action   Action
	Amount   string
}

func NewSuccessRecord(args RecordArgs, now time.Time) TxRecord {
	return TxRecord{
		ID:       args.Digest,
		Time:     now.UnixMilli(),
		Network:  args.Network.String(),
		BrandKey: args.BrandKey,
		Action:   args.Action,
		Digest:   args.Digest,
		Status:   TxSuccess,
		Amount:   args.Amount,
	}
}

// NewErrorRecord records a failed operation. Failures that never reached
// the chain have no digest, a local one is generated for them.
func NewErrorRecord(args RecordArgs, errMsg string, now time.Time) TxRecord {
	digest := args.Digest
	if len(digest) <= 0 {
		digest = LocalDigest()
	}
	return TxRecord{
		ID:       digest,
		Time:     now.UnixMilli(),
		Network:  args.Network.String(),
		BrandKey: args.BrandKey,
		Action:   args.Action,
		Digest:   digest,
		Status:   TxError,
		Amount:   args.Amount,
		Error:    errMsg,
	}
}

const localDigestPrefix = "local-"

func LocalDigest() string {
	return localDigestPrefix + uuid.New().String()
}

// PendingRedeem is an outstanding T+1 redeem waiting for settlement.
type PendingRedeem struct {
	Digest        string `json:"digest"`
	Time          int64  `json:"time"`
	Network       string `json:"network"`
	BrandKey      string `json:"brandKey"`
	Amount        string `json:"amount"`
	BrandCoinType string `json:"brandCoinType"`
}

func (p PendingRedeem) SubmittedAt() time.Time {
	return time.UnixMilli(p.Time)
}

func NewPendingRedeem(
	digest string, network Network, brand Brand, amount string, now time.Time,
) PendingRedeem {
	return PendingRedeem{
		Digest:        digest,
		Time:          now.UnixMilli(),
		Network:       network.String(),
		BrandKey:      brand.Key,
		Amount:        amount,
		BrandCoinType: brand.CoinType,
	}
}

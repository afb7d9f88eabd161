package ports

import (
	"context"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
)

// Operation is an unsigned protocol call ready to be handed to a Signer.
type Operation struct {
	ID            string
	Action        domain.Action
	Network       domain.Network
	Sender        string
	Target        string
	BrandCoinType string
	USDCCoinType  string
	Amount        amount.Amount
	All           bool
	Mode          domain.RedeemMode
}

type Summary struct {
	Operation       domain.Action
	BrandCoinType   string
	AmountFormatted string
	Mode            domain.RedeemMode
	Notes           []string
}

type BuildResult struct {
	Operation Operation
	Summary   Summary
}

// Capability is a (network, coin type) pair an adapter can build for.
type Capability struct {
	Network     domain.Network
	CoinType    string
	RedeemModes []domain.RedeemMode
}

// MintArgs carries the USDC to deposit in base units. Decimals are the
// USDC decimals, used to format the summary.
type MintArgs struct {
	Network       domain.Network
	Sender        string
	BrandCoinType string
	USDCCoinType  string
	Amount        amount.Amount
	Decimals      uint32
}

// RedeemArgs requires exactly one of a positive Amount, in brand base
// units, and All.
type RedeemArgs struct {
	Network       domain.Network
	Sender        string
	BrandCoinType string
	Amount        amount.Amount
	Decimals      uint32
	All           bool
	Mode          domain.RedeemMode
}

type ClaimArgs struct {
	Network       domain.Network
	Sender        string
	BrandCoinType string
}

type ProtocolAdapter interface {
	BuildMint(ctx context.Context, args MintArgs) (*BuildResult, error)
	BuildRedeem(ctx context.Context, args RedeemArgs) (*BuildResult, error)
	BuildClaim(ctx context.Context, args ClaimArgs) (*BuildResult, error)
	Capabilities() []Capability
}

package ports

import (
	"context"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
)

type SubmitResult struct {
	Digest string
}

type Signer interface {
	SignAndSubmit(ctx context.Context, op Operation) (*SubmitResult, error)
}

type CoinMetadata struct {
	Decimals uint32
	Symbol   string
}

type BalanceReader interface {
	Balance(ctx context.Context, network domain.Network, owner, coinType string) (amount.Amount, error)
	CoinMetadata(ctx context.Context, network domain.Network, coinType string) (*CoinMetadata, error)
}

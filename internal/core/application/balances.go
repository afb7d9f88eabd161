package application

import (
	"context"
	"fmt"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type TokenBalance struct {
	CoinType string
	Amount   amount.Amount
	Decimals uint32
	Symbol   string
}

func (b TokenBalance) Formatted() string {
	return amount.Format(b.Amount, b.Decimals)
}

func (b TokenBalance) Decimal() decimal.Decimal {
	return b.Amount.Decimal(b.Decimals)
}

type Balances struct {
	USDC  TokenBalance
	Brand TokenBalance
}

func emptyBalances(network domain.Network, brand domain.Brand) Balances {
	netCfg, _ := network.Config()
	return Balances{
		USDC: TokenBalance{
			CoinType: netCfg.USDCCoinType,
			Amount:   amount.Zero(),
			Decimals: domain.DefaultDecimals,
			Symbol:   "USDC",
		},
		Brand: TokenBalance{
			CoinType: brand.CoinType,
			Amount:   amount.Zero(),
			Decimals: domain.DefaultDecimals,
			Symbol:   brand.DisplayName,
		},
	}
}

// fetchBalances reads the USDC balance and, for a configured brand, the
// brand balance. A failed brand read leaves the brand balance at zero.
func (s *Service) fetchBalances(ctx context.Context) (Balances, error) {
	network, brand, owner := s.state.Network(), s.state.Brand(), s.state.Address()
	balances := emptyBalances(network, brand)
	if len(owner) <= 0 {
		return balances, nil
	}

	usdc, err := s.readBalance(ctx, network, owner, balances.USDC)
	if err != nil {
		return emptyBalances(network, brand), fmt.Errorf("failed to fetch USDC balance: %w", err)
	}
	balances.USDC = usdc

	if brand.IsConfigured() {
		b, err := s.readBalance(ctx, network, owner, balances.Brand)
		if err != nil {
			log.WithError(err).Warnf("failed to fetch %s balance", brand.DisplayName)
		} else {
			balances.Brand = b
		}
	}
	return balances, nil
}

func (s *Service) readBalance(
	ctx context.Context, network domain.Network, owner string, tb TokenBalance,
) (TokenBalance, error) {
	total, err := s.balances.Balance(ctx, network, owner, tb.CoinType)
	if err != nil {
		return tb, err
	}
	tb.Amount = total

	meta, err := s.balances.CoinMetadata(ctx, network, tb.CoinType)
	if err != nil {
		log.WithError(err).Debugf("no metadata for %s, using defaults", tb.CoinType)
		return tb, nil
	}
	if meta != nil {
		tb.Decimals = meta.Decimals
		if len(meta.Symbol) > 0 {
			tb.Symbol = meta.Symbol
		}
	}
	return tb, nil
}

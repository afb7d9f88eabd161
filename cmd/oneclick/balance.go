package main

import (
	"fmt"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/config"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/infrastructure/chain/simulated"
	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	"github.com/urfave/cli/v2"
)

func balanceAction(ctx *cli.Context) error {
	if err := requireConnected(); err != nil {
		return err
	}
	return printBalances(ctx)
}

func faucetAction(ctx *cli.Context) error {
	if err := requireConnected(); err != nil {
		return err
	}

	usdcAmount := ctx.String(faucetAmountFlag.Name)
	if len(usdcAmount) <= 0 {
		usdcAmount = appConfig.SimUSDCFaucet
	}

	chain, err := appConfig.Chain()
	if err != nil {
		return err
	}
	network, owner := svc.State().Network(), svc.State().Address()
	usdc := svc.Balances().USDC

	for _, c := range []struct {
		coinType string
		value    string
	}{
		{usdc.CoinType, usdcAmount},
		{simulated.SuiCoinType, config.SimGasFaucet},
	} {
		metadata, err := chain.CoinMetadata(ctx.Context, network, c.coinType)
		if err != nil {
			return err
		}
		value, err := amount.Parse(c.value, metadata.Decimals)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid amount: %s", err), 1)
		}
		if err := chain.Faucet(network, owner, c.coinType, value); err != nil {
			return err
		}
	}

	return printBalances(ctx)
}

func printBalances(ctx *cli.Context) error {
	balances, err := svc.RefreshBalances(ctx.Context)
	if err != nil {
		return err
	}

	chain, err := appConfig.Chain()
	if err != nil {
		return err
	}
	network, owner := svc.State().Network(), svc.State().Address()
	gas, err := chain.Balance(ctx.Context, network, owner, simulated.SuiCoinType)
	if err != nil {
		return err
	}
	gasMetadata, err := chain.CoinMetadata(ctx.Context, network, simulated.SuiCoinType)
	if err != nil {
		return err
	}

	rows := []struct {
		symbol string
		value  string
	}{
		{balances.USDC.Symbol, balances.USDC.Formatted()},
		{balances.Brand.Symbol, balances.Brand.Formatted()},
		{gasMetadata.Symbol, amount.Format(gas, gasMetadata.Decimals)},
	}

	if jsonOutput(ctx) {
		resp := make(map[string]string, len(rows))
		for _, r := range rows {
			resp[r.symbol] = r.value
		}
		return printJSON(resp)
	}

	fmt.Printf("%s on %s\n", bold(owner), network)
	for _, r := range rows {
		fmt.Printf("  %-8s %s\n", r.symbol, r.value)
	}
	return nil
}

package main

import (
	"errors"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/application"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/urfave/cli/v2"
)

func mintAction(ctx *cli.Context) error {
	outcome, err := svc.Mint(ctx.Context, ctx.String(amountFlag.Name))
	if err != nil {
		return exitOnValidation(err)
	}
	return printOutcome(ctx, outcome)
}

func redeemAction(ctx *cli.Context) error {
	outcome, err := svc.Redeem(ctx.Context, application.RedeemRequest{
		Amount: ctx.String(redeemAmountFlag.Name),
		All:    ctx.Bool(allFlag.Name),
		Mode:   domain.RedeemMode(ctx.String(modeFlag.Name)),
	})
	if err != nil {
		return exitOnValidation(err)
	}
	return printOutcome(ctx, outcome)
}

func claimAction(ctx *cli.Context) error {
	outcome, err := svc.Claim(ctx.Context)
	if err != nil {
		return exitOnValidation(err)
	}
	return printOutcome(ctx, outcome)
}

func exitOnValidation(err error) error {
	if errors.Is(err, application.ErrValidation) {
		return cli.Exit(err.Error(), 1)
	}
	return err
}

package main

import (
	"fmt"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/urfave/cli/v2"
)

func historyAction(ctx *cli.Context) error {
	if ctx.Bool(clearFlag.Name) {
		svc.ClearHistory()
		fmt.Println("History cleared")
		return nil
	}

	records := svc.History()
	if jsonOutput(ctx) {
		return printJSON(records)
	}
	if len(records) <= 0 {
		fmt.Println("No transactions yet")
		return nil
	}

	for _, r := range records {
		status := green(r.Status)
		if r.Status == domain.TxError {
			status = red(r.Status)
		}
		fmt.Printf(
			"%s  %-6s %-7s  %-16s  %s\n",
			faint(formatTime(r.Time)), r.Action, status, r.Amount, shortDigest(r.Digest),
		)
		if len(r.Error) > 0 {
			fmt.Printf("    %s\n", faint(r.Error))
		}
	}
	return nil
}

func pendingAction(ctx *cli.Context) error {
	if ctx.Bool(clearFlag.Name) {
		svc.ClearPendings()
		fmt.Println("Pending redeems cleared")
		return nil
	}
	if digest := ctx.String(confirmFlag.Name); len(digest) > 0 {
		svc.ConfirmPending(digest)
		fmt.Println("Confirmed " + digest)
		return nil
	}

	pendings := svc.Pendings()
	if jsonOutput(ctx) {
		return printJSON(pendings)
	}
	if len(pendings) <= 0 {
		fmt.Println("No pending redeems")
		return nil
	}

	for _, p := range pendings {
		fmt.Printf(
			"%s  %-16s  %s  %s\n",
			faint(formatTime(p.Time)), p.Amount, p.Network, p.Digest,
		)
	}
	fmt.Println(faint("T+1 redeems settle the next day, confirm them with pending --confirm <digest>"))
	return nil
}

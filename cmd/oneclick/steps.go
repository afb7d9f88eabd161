package main

import (
	"fmt"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/urfave/cli/v2"
)

type stepView struct {
	Key            domain.StepKey `json:"key"`
	Title          string         `json:"title"`
	Subtitle       string         `json:"subtitle"`
	Status         string         `json:"status"`
	BlockingReason string         `json:"blockingReason,omitempty"`
	Active         bool           `json:"active"`
}

func stepsAction(ctx *cli.Context) error {
	steps, active := svc.Steps(), svc.ActiveStep()

	if jsonOutput(ctx) {
		views := make([]stepView, 0, len(steps))
		for _, s := range steps {
			views = append(views, stepView{
				Key:            s.Key,
				Title:          s.Title,
				Subtitle:       s.Subtitle,
				Status:         s.Status.String(),
				BlockingReason: s.BlockingReason,
				Active:         s.Key == active,
			})
		}
		return printJSON(views)
	}

	printSteps(steps, active)
	return nil
}

func gotoAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("missing step, one of: mint, redeem, claim", 1)
	}

	key, ok := domain.ParseStepKey(ctx.Args().Get(0))
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown step %s", ctx.Args().Get(0)), 1)
	}
	if !svc.GoToStep(key) {
		step, _ := domain.FindStep(svc.Steps(), key)
		return cli.Exit(fmt.Sprintf("step %s is locked: %s", key, step.BlockingReason), 1)
	}
	if err := saveSession(); err != nil {
		return err
	}

	printSteps(svc.Steps(), svc.ActiveStep())
	return nil
}

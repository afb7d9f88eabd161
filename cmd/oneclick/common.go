package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/application"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/domain"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const settleMargin = 5 * time.Second

var (
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// jsonOutput is true when stdout is not a terminal or --json was given.
func jsonOutput(ctx *cli.Context) bool {
	return ctx.Bool(jsonFlag.Name) || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}

	fmt.Println(string(jsonBytes))
	return nil
}

func requireConnected() error {
	if !svc.State().IsConnected() {
		return cli.Exit("no address connected, run connect --address <0x...> first", 1)
	}
	return nil
}

func saveSession() error {
	if err := session.save(svc); err != nil {
		return fmt.Errorf("failed to persist cli session: %s", err)
	}
	return nil
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format(time.DateTime)
}

func shortDigest(digest string) string {
	if len(digest) <= 16 {
		return digest
	}
	return digest[:8] + "…" + digest[len(digest)-6:]
}

func colorStatus(status domain.StepStatus) string {
	label := fmt.Sprintf("%-8s", status)
	switch status {
	case domain.StepDone:
		return green(label)
	case domain.StepPending:
		return yellow(label)
	case domain.StepLocked:
		return faint(label)
	default:
		return cyan(label)
	}
}

func printSteps(steps [3]domain.Step, active domain.StepKey) {
	for i, step := range steps {
		marker := " "
		if step.Key == active {
			marker = bold(">")
		}
		fmt.Printf(
			"%s %s %d. %s %s %s\n",
			marker, step.Icon(), i+1, bold(fmt.Sprintf("%-7s", step.Title)),
			colorStatus(step.Status), step.Subtitle,
		)
		if len(step.BlockingReason) > 0 {
			fmt.Printf("         %s\n", faint(step.BlockingReason))
		}
	}
}

type outcomeView struct {
	Action   domain.Action `json:"action"`
	Phase    string        `json:"phase"`
	Digest   string        `json:"digest,omitempty"`
	Amount   string        `json:"amount,omitempty"`
	Mode     string        `json:"mode,omitempty"`
	Notes    []string      `json:"notes,omitempty"`
	Category string        `json:"category,omitempty"`
	Friendly string        `json:"friendly,omitempty"`
	Details  string        `json:"details,omitempty"`
	Error    string        `json:"error,omitempty"`
	NextStep string        `json:"nextStep"`
}

func newOutcomeView(outcome *application.Outcome) outcomeView {
	view := outcomeView{
		Action:   outcome.Action,
		Phase:    outcome.Session.Phase.String(),
		Digest:   outcome.Session.Digest,
		Error:    outcome.Session.Error,
		NextStep: svc.ActiveStep().String(),
	}
	if outcome.Summary != nil {
		view.Amount = outcome.Summary.AmountFormatted
		view.Mode = string(outcome.Summary.Mode)
		view.Notes = outcome.Summary.Notes
	}
	if outcome.Failure != nil {
		view.Category = outcome.Failure.Category.String()
		view.Friendly = outcome.Failure.Friendly
		view.Details = outcome.Failure.Details
	}
	return view
}

// printOutcome waits for the guided flow to settle, persists the session and
// reports the outcome. A failed operation is returned as an error.
func printOutcome(ctx *cli.Context, outcome *application.Outcome) error {
	<-outcome.Advanced
	if err := saveSession(); err != nil {
		return err
	}

	view := newOutcomeView(outcome)
	if jsonOutput(ctx) {
		if err := printJSON(view); err != nil {
			return err
		}
	} else if outcome.Succeeded() {
		fmt.Printf("%s %s submitted\n", green("✓"), bold(view.Action))
		if len(view.Amount) > 0 {
			fmt.Printf("  amount: %s\n", view.Amount)
		}
		if len(view.Mode) > 0 {
			fmt.Printf("  mode:   %s\n", view.Mode)
		}
		fmt.Printf("  digest: %s\n", view.Digest)
		for _, note := range view.Notes {
			fmt.Printf("  %s\n", faint(note))
		}
		fmt.Printf("  next:   %s\n", view.NextStep)
		if err := waitSettled(ctx, outcome); err != nil {
			return err
		}
	} else {
		fmt.Printf("%s %s\n", red("✗"), bold(view.Friendly))
		fmt.Println(indent(view.Details, "  "))
		fmt.Printf("  %s %s\n", faint("raw error:"), view.Error)
	}

	if !outcome.Succeeded() {
		return fmt.Errorf("%s failed: %s", outcome.Action, outcome.Failure.Category)
	}
	return nil
}

// waitSettled keeps the process alive until the delayed balance refresh ran,
// then prints the refreshed balances.
func waitSettled(ctx *cli.Context, outcome *application.Outcome) error {
	fmt.Println(faint("waiting for balances to settle..."))
	select {
	case <-outcome.Settled:
	case <-time.After(appConfig.SettleDelay + settleMargin):
		fmt.Println(faint("balances not refreshed yet, run balance to check again"))
		return nil
	case <-ctx.Context.Done():
		return nil
	}
	return printBalances(ctx)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if len(l) > 0 {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

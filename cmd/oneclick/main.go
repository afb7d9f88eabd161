package main

import (
	"fmt"
	"os"

	"github.com/StarryDeserts/StableLayer-quickstart/internal/config"
	"github.com/StarryDeserts/StableLayer-quickstart/internal/core/application"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	version = "alpha"

	appConfig *config.Config
	svc       *application.Service
	session   *sessionStore
)

var (
	configCommand = cli.Command{
		Name:   "config",
		Usage:  "Shows the effective configuration",
		Action: printConfigAction,
	}
	connectCommand = cli.Command{
		Name:   "connect",
		Usage:  "Sets the address operations are sent from",
		Flags:  []cli.Flag{&addressFlag},
		Action: connectAction,
	}
	disconnectCommand = cli.Command{
		Name:   "disconnect",
		Usage:  "Forgets the connected address",
		Action: disconnectAction,
	}
	balanceCommand = cli.Command{
		Name:   "balance",
		Usage:  "Shows the USDC, brand and gas balances of the connected address",
		Action: balanceAction,
	}
	faucetCommand = cli.Command{
		Name:   "faucet",
		Usage:  "Credits the connected address with simulated USDC and SUI for gas",
		Flags:  []cli.Flag{&faucetAmountFlag},
		Action: faucetAction,
	}
	mintCommand = cli.Command{
		Name:   "mint",
		Usage:  "Deposits USDC to mint the brand stablecoin",
		Flags:  []cli.Flag{&amountFlag},
		Action: mintAction,
	}
	redeemCommand = cli.Command{
		Name:   "redeem",
		Usage:  "Burns the brand stablecoin to get USDC back",
		Flags:  []cli.Flag{&redeemAmountFlag, &allFlag, &modeFlag},
		Action: redeemAction,
	}
	claimCommand = cli.Command{
		Name:   "claim",
		Usage:  "Claims liquidity mining rewards",
		Action: claimAction,
	}
	historyCommand = cli.Command{
		Name:   "history",
		Usage:  "Shows the latest transactions",
		Flags:  []cli.Flag{&clearFlag},
		Action: historyAction,
	}
	pendingCommand = cli.Command{
		Name:   "pending",
		Usage:  "Shows the T+1 redeems waiting for settlement",
		Flags:  []cli.Flag{&confirmFlag, &clearFlag},
		Action: pendingAction,
	}
	stepsCommand = cli.Command{
		Name:   "steps",
		Usage:  "Shows the guided mint, redeem and claim steps",
		Action: stepsAction,
	}
	gotoCommand = cli.Command{
		Name:      "goto",
		Usage:     "Selects a guided step",
		ArgsUsage: "<mint|redeem|claim>",
		Action:    gotoAction,
	}
)

var (
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "print JSON even when stdout is a terminal",
	}
	addressFlag = cli.StringFlag{
		Name:     "address",
		Usage:    "address to connect, must start with 0x",
		Required: true,
	}
	faucetAmountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount of USDC to credit, defaults to the configured faucet amount",
	}
	amountFlag = cli.StringFlag{
		Name:     "amount",
		Usage:    "amount of USDC to deposit, e.g. 1.5",
		Required: true,
	}
	redeemAmountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount of the brand stablecoin to redeem",
	}
	allFlag = cli.BoolFlag{
		Name:  "all",
		Usage: "redeem the whole brand balance",
	}
	modeFlag = cli.StringFlag{
		Name:  "mode",
		Usage: "redeem mode (t_plus_1, instant)",
		Value: "t_plus_1",
	}
	clearFlag = cli.BoolFlag{
		Name:  "clear",
		Usage: "remove every entry",
	}
	confirmFlag = cli.StringFlag{
		Name:  "confirm",
		Usage: "digest of a redeem that settled",
	}
)

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "oneclick"
	app.Usage = "one-click mint, redeem and claim on the StableLayer protocol"
	app.Flags = []cli.Flag{&jsonFlag}
	app.Commands = append(
		app.Commands,
		&configCommand,
		&connectCommand,
		&disconnectCommand,
		&balanceCommand,
		&faucetCommand,
		&mintCommand,
		&redeemCommand,
		&claimCommand,
		&historyCommand,
		&pendingCommand,
		&stepsCommand,
		&gotoCommand,
	)

	app.Before = setup
	app.After = func(*cli.Context) error {
		if appConfig != nil {
			appConfig.Close()
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

func setup(ctx *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log.SetLevel(log.Level(cfg.LogLevel))

	appSvc, err := cfg.AppService()
	if err != nil {
		cfg.Close()
		return err
	}
	repo, err := cfg.RepoManager()
	if err != nil {
		cfg.Close()
		return err
	}

	appConfig, svc = cfg, appSvc
	session = newSessionStore(repo.Store())
	if err := session.restore(svc); err != nil {
		return err
	}

	if svc.State().IsConnected() {
		if _, err := svc.RefreshBalances(ctx.Context); err != nil {
			log.WithError(err).Warn("failed to read balances")
		}
	}
	return nil
}

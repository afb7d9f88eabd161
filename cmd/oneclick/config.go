package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func printConfigAction(ctx *cli.Context) error {
	network := appConfig.Network
	protocol := appConfig.ProtocolConfigs()[network]
	brand := svc.State().Brand()

	return printJSON(map[string]interface{}{
		"config":          appConfig,
		"address":         svc.State().Address(),
		"protocol":        protocol,
		"protocol_errors": protocol.Errors(),
		"brand":           brand,
		"brand_errors":    brand.ConfigErrors(),
	})
}

func connectAction(ctx *cli.Context) error {
	address := ctx.String(addressFlag.Name)
	if err := svc.State().Connect(address); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := saveSession(); err != nil {
		return err
	}

	fmt.Println("Connected to " + svc.State().Address())
	return nil
}

func disconnectAction(ctx *cli.Context) error {
	svc.State().Disconnect()
	if err := saveSession(); err != nil {
		return err
	}

	fmt.Println("Disconnected")
	return nil
}

package main

import (
	"log"
	"os"

	storefrontcli "github.com/go-barry/storefront/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "storefront",
		Usage: "Serve the Fresh Goods storefront",
		Commands: []*clilib.Command{
			storefrontcli.DevCommand,
			storefrontcli.ProdCommand,
			storefrontcli.BuildCommand,
			storefrontcli.CleanCommand,
			storefrontcli.CheckCommand,
			storefrontcli.InfoCommand,
		},
	}
	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}

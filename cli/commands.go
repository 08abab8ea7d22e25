package cli

import (
	"github.com/go-barry/storefront"
	"github.com/go-barry/storefront/core"

	"github.com/urfave/cli/v2"
)

var loadConfig = core.LoadConfig

// Flags are built per command; urfave writes env values back into the flag.
func portFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Usage:   "port to listen on",
		Value:   8080,
		EnvVars: []string{"PORT"},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the YAML config file",
		Value:   core.DefaultConfigPath,
	}
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start the storefront in dev mode (no caching, live reload)",
	Flags: []cli.Flag{portFlag(), configFlag()},
	Action: func(c *cli.Context) error {
		return storefront.Start(storefront.RuntimeConfig{
			Env:         "dev",
			EnableCache: false,
			Port:        c.Int("port"),
			ConfigPath:  c.String("config"),
		})
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start the storefront in production mode (page cache and minified assets)",
	Flags: []cli.Flag{portFlag(), configFlag()},
	Action: func(c *cli.Context) error {
		return storefront.Start(storefront.RuntimeConfig{
			Env:         "prod",
			EnableCache: true,
			Port:        c.Int("port"),
			ConfigPath:  c.String("config"),
		})
	},
}

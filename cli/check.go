package cli

import (
	"fmt"

	"github.com/go-barry/storefront"
	"github.com/go-barry/storefront/core"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse and render every page template",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))

		app, err := storefront.NewApp("dev", config, zap.NewNop())
		if err != nil {
			fmt.Printf("❌ templates → parse error: %v\n", err)
			return cli.Exit("some templates failed to compile", 1)
		}

		var failed bool
		for _, page := range app.Renderer.Pages() {
			if _, err := app.Renderer.Render(page, core.PageData{}); err != nil {
				failed = true
				fmt.Printf("❌ %s → exec error: %v\n", page, err)
				continue
			}
			fmt.Printf("✅ %s\n", page)
		}

		if failed {
			return cli.Exit("some templates failed to compile", 1)
		}

		fmt.Println("✅ All templates validated successfully.")
		return nil
	},
}

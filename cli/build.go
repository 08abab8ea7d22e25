package cli

import (
	"fmt"

	"github.com/go-barry/storefront"
	"github.com/go-barry/storefront/core"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var BuildCommand = &cli.Command{
	Name:  "build",
	Usage: "Prerender every page into the output directory for the production page cache",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))

		app, err := storefront.NewApp("prod", config, zap.NewNop())
		if err != nil {
			return fmt.Errorf("failed to load templates: %w", err)
		}

		for _, page := range core.Pages {
			html, err := app.Renderer.Render(page.Name, core.PageData{})
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", page.Route, err)
			}
			if err := core.SaveCachedHTML(config, page.Route, html); err != nil {
				return fmt.Errorf("failed to write %s: %w", page.Route, err)
			}
			fmt.Println("🔧 Built:", page.Route)
		}

		fmt.Println("✅ All pages built into", config.OutputDir)
		return nil
	},
}

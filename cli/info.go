package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-barry/storefront/core"
	"github.com/urfave/cli/v2"
)

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print configuration, routes and cache summary",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))

		templates := "embedded"
		if config.TemplatesDir != "" {
			templates = config.TemplatesDir
		}

		fmt.Println("📁 Output Directory:", config.OutputDir)
		fmt.Println("🧩 Templates:", templates)
		cache := "dev=false, prod=true"
		if config.Cache != nil {
			cache = fmt.Sprint(*config.Cache)
		}
		fmt.Println("🔁 Cache Enabled:", cache)
		fmt.Println("🔁 Debug Headers Enabled:", config.DebugHeaders)
		fmt.Println("⏱️  Notice Lifetime:", config.FlashLifetime())
		fmt.Println()

		cacheCount := 0
		filepath.Walk(config.OutputDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() && strings.HasSuffix(path, ".html") {
				cacheCount++
			}
			return nil
		})

		fmt.Println("🗂️  Routes Found:", len(core.Pages))
		for _, page := range core.Pages {
			fmt.Printf("   GET  %-14s → %s\n", page.Route, page.Name)
		}
		fmt.Printf("   POST %-14s → %s\n", "/contact", "/contact")
		fmt.Printf("   POST %-14s → %s\n", "/submit-review", "/reviews")
		fmt.Println("💾 Cached Pages:", cacheCount)

		return nil
	},
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

var CleanCommand = &cli.Command{
	Name:      "clean",
	Usage:     "Delete prerendered pages from the output directory (default: outputDir in storefront.config.yml)",
	ArgsUsage: "[route (optional)]",
	Flags:     []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := loadConfig(c.String("config"))
		target := config.OutputDir

		if c.Args().Len() > 0 {
			route := strings.Trim(c.Args().Get(0), "/")
			if route == "" || strings.Contains(route, "..") {
				return fmt.Errorf("invalid route: %q", c.Args().Get(0))
			}
			target = filepath.Join(config.OutputDir, filepath.FromSlash(route))
		}

		info, err := os.Stat(target)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("🧼 Nothing to clean:", target)
				return nil
			}
			return fmt.Errorf("failed to access path: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", target)
		}

		fmt.Println("🧹 Cleaning:", target)
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}

		fmt.Println("✅ Done.")
		return nil
	},
}

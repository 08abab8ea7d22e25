package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/go-barry/storefront/core"
	"github.com/urfave/cli/v2"
)

func captureOutput(f func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func overrideLoadConfig(outputDir string, testFn func()) {
	overrideConfig(core.Config{OutputDir: outputDir, SecretKey: "test"}, testFn)
}

func overrideConfig(cfg core.Config, testFn func()) {
	orig := loadConfig
	loadConfig = func(_ string) core.Config {
		return cfg
	}
	defer func() { loadConfig = orig }()
	testFn()
}

// noExit keeps cli.Exit errors from terminating the test binary.
func noExit(t *testing.T) {
	orig := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = orig })
}

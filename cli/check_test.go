package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-barry/storefront/core"
	"github.com/urfave/cli/v2"
)

func TestCheckCommand_EmbeddedTemplates(t *testing.T) {
	var runErr error
	var output string
	overrideConfig(core.Config{OutputDir: t.TempDir(), SecretKey: "test"}, func() {
		app := &cli.App{Commands: []*cli.Command{CheckCommand}}
		output = captureOutput(func() {
			runErr = app.Run([]string{"cli", "check"})
		})
	})

	if runErr != nil {
		t.Fatalf("expected no error, got: %v\n%s", runErr, output)
	}
	for _, page := range []string{"index", "products", "reviews", "contact", "404"} {
		if !strings.Contains(output, "✅ "+page) {
			t.Errorf("expected success marker for %s, got:\n%s", page, output)
		}
	}
	if !strings.Contains(output, "All templates validated successfully.") {
		t.Errorf("expected final success message, got:\n%s", output)
	}
}

func TestCheckCommand_ParseError(t *testing.T) {
	noExit(t)
	dir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(dir, "pages"), 0755)
	_ = os.WriteFile(filepath.Join(dir, "layout.html"), []byte(`{{ define "layout" }}Valid Layout{{ end }}`), 0644)
	_ = os.WriteFile(filepath.Join(dir, "pages", "bad.html"), []byte("<!-- layout: layout.html -->\n{{ define \"content\" }} {{ if }} {{ end }}"), 0644)

	cfg := core.Config{OutputDir: t.TempDir(), TemplatesDir: dir, SecretKey: "test"}

	var runErr error
	var output string
	overrideConfig(cfg, func() {
		app := &cli.App{Commands: []*cli.Command{CheckCommand}}
		output = captureOutput(func() {
			runErr = app.Run([]string{"cli", "check"})
		})
	})

	exitErr, ok := runErr.(cli.ExitCoder)
	if !ok || exitErr.ExitCode() != 1 {
		t.Fatalf("expected cli.Exit code 1, got: %v", runErr)
	}
	if !strings.Contains(output, "parse error") {
		t.Errorf("expected parse error output, got:\n%s", output)
	}
}

func TestCheckCommand_ExecError(t *testing.T) {
	noExit(t)
	dir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(dir, "pages"), 0755)
	_ = os.WriteFile(filepath.Join(dir, "layout.html"), []byte(`{{ define "layout" }}{{ template "content" . }}{{ end }}`), 0644)
	_ = os.WriteFile(filepath.Join(dir, "pages", "ok.html"), []byte("<!-- layout: layout.html -->\n{{ define \"content\" }}fine{{ end }}"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "pages", "broken.html"), []byte("<!-- layout: layout.html -->\n{{ define \"content\" }}{{ .Missing.Field }}{{ end }}"), 0644)

	cfg := core.Config{OutputDir: t.TempDir(), TemplatesDir: dir, SecretKey: "test"}

	var runErr error
	var output string
	overrideConfig(cfg, func() {
		app := &cli.App{Commands: []*cli.Command{CheckCommand}}
		output = captureOutput(func() {
			runErr = app.Run([]string{"cli", "check"})
		})
	})

	if runErr == nil {
		t.Fatal("expected an error for a template that fails to execute")
	}
	if !strings.Contains(output, "✅ ok") || !strings.Contains(output, "❌ broken → exec error") {
		t.Errorf("unexpected output:\n%s", output)
	}
}

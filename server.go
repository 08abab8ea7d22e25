package storefront

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-barry/storefront/core"
	"github.com/go-barry/storefront/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type RuntimeConfig struct {
	Env         string
	EnableCache bool
	Port        int
	ConfigPath  string
}

// App is the assembled site: its HTTP handler plus the pieces dev mode
// needs to reload templates and assets.
type App struct {
	Handler  http.Handler
	Renderer *core.Renderer
	Assets   *core.AssetStore
	Reloader core.LiveReloaderInterface
	Watcher  *core.Watcher
}

// Start runs the server until SIGINT or SIGTERM. It is a variable so the CLI
// can be tested without binding a port.
var Start = func(cfg RuntimeConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cfg)
}

// loadRuntimeConfig reads the config file and lets the run mode decide the
// page cache when the file and environment leave it unset.
func loadRuntimeConfig(cfg RuntimeConfig) core.Config {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = core.DefaultConfigPath
	}
	config := core.LoadConfig(configPath)
	config.ApplyModeDefault(cfg.EnableCache)
	return config
}

func Run(ctx context.Context, cfg RuntimeConfig) error {
	config := loadRuntimeConfig(cfg)

	logger, err := core.NewLogger(config)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if config.GeneratedSecret {
		logger.Warn("no secret key configured, generated a random one; notices will not survive a restart")
	}

	app, err := NewApp(cfg.Env, config, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("storefront running", zap.String("env", cfg.Env), zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if app.Reloader != nil {
			app.Reloader.Close()
		}
		logger.Info("storefront stopped")
		return err
	})
	if app.Watcher != nil {
		g.Go(func() error {
			return app.Watcher.Run(gctx)
		})
	}

	return g.Wait()
}

// NewApp wires templates, assets, notices and routes for env ("dev" or "prod").
func NewApp(env string, config core.Config, logger *zap.Logger) (*App, error) {
	templatesFS := web.Templates()
	if config.TemplatesDir != "" {
		templatesFS = os.DirFS(config.TemplatesDir)
	}
	var staticFS fs.FS = web.Static()
	if config.StaticDir != "" {
		staticFS = os.DirFS(config.StaticDir)
	}

	assets := core.NewAssetStore(staticFS, env)
	renderer, err := core.NewRenderer(templatesFS, env, assets)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	router := core.NewRouter(config, core.RuntimeContext{
		Env:      env,
		Logger:   logger,
		Renderer: renderer,
		Flasher:  core.NewFlasher(config.SecretKey, config.FlashLifetime()),
	})

	app := &App{
		Renderer: renderer,
		Assets:   assets,
	}

	mux := http.NewServeMux()
	mux.Handle(core.StaticPrefix, makeStaticHandler(assets, env))

	if env == "dev" {
		app.Reloader = core.NewLiveReloader(logger)
		mux.HandleFunc(core.LiveReloadPath, app.Reloader.Handler)

		var dirs []string
		for _, dir := range []string{config.TemplatesDir, config.StaticDir} {
			if dir != "" {
				dirs = append(dirs, dir)
			}
		}
		if len(dirs) > 0 {
			app.Watcher = core.NewWatcher(logger, func() {
				if err := renderer.Reload(); err != nil {
					logger.Error("template reload failed", zap.Error(err))
					return
				}
				assets.Invalidate()
				app.Reloader.BroadcastReload()
			}, dirs...)
		}
	}

	mux.Handle("/", router)
	app.Handler = mux
	return app, nil
}

func makeStaticHandler(assets *core.AssetStore, env string) http.Handler {
	cacheControl := "no-store"
	if env == "prod" {
		cacheControl = "public, max-age=31536000, immutable"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, core.StaticPrefix)
		asset, err := assets.Load(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		serveAsset(w, r, asset, cacheControl)
	})
}

func serveAsset(w http.ResponseWriter, r *http.Request, asset *core.Asset, cacheControl string) {
	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Cache-Control", cacheControl)

	body := asset.Body
	if asset.Gzip != nil {
		w.Header().Set("Vary", "Accept-Encoding")
		if acceptsGzip(r) {
			w.Header().Set("Content-Encoding", "gzip")
			body = asset.Gzip
		}
	}

	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

// acceptsGzip reports whether Accept-Encoding allows gzip. An explicit gzip
// entry wins over "*", and q=0 refuses the coding.
func acceptsGzip(r *http.Request) bool {
	wildcard := false
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, params, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		ok := qualityAllows(params)
		if coding == "gzip" {
			return ok
		}
		wildcard = ok
	}
	return wildcard
}

func qualityAllows(params string) bool {
	for _, param := range strings.Split(params, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil && q > 0
	}
	return true
}

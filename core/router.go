package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Page binds a GET route to the page template that renders it.
type Page struct {
	Route string
	Name  string
}

var Pages = []Page{
	{Route: "/", Name: "index"},
	{Route: "/products", Name: "products"},
	{Route: "/reviews", Name: "reviews"},
	{Route: "/contact", Name: "contact"},
}

type RuntimeContext struct {
	Env      string
	Logger   *zap.Logger
	Renderer *Renderer
	Flasher  *Flasher
}

type Router struct {
	config      Config
	env         string
	logger      *zap.Logger
	submissions *zap.Logger
	renderer    *Renderer
	flasher     *Flasher
	mux         chi.Router
}

func NewRouter(config Config, rt RuntimeContext) *Router {
	logger := rt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		config:      config,
		env:         rt.Env,
		logger:      logger,
		submissions: logger.Named("submissions"),
		renderer:    rt.Renderer,
		flasher:     rt.Flasher,
	}
	r.mux = r.routes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) routes() chi.Router {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(RequestLogger(r.logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.GetHead)

	for _, page := range Pages {
		mux.Get(page.Route, r.servePage(page))
	}
	mux.Post("/contact", r.handleContact)
	mux.Post("/submit-review", r.handleReview)
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.NotFound(r.notFound)

	return mux
}

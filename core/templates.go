package core

import (
	"bufio"
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"
)

const (
	layoutDirective = "<!-- layout:"
	pagesDir        = "pages"
	componentsGlob  = "components/*.html"
	NotFoundPage    = "404"
)

// PageData is what every page template is executed with.
type PageData struct {
	Page       string
	Title      string
	Notice     *Notice
	LiveReload bool
	Year       int
}

// Renderer parses pages/*.html, each into its own set together with its
// layout and the shared components.
type Renderer struct {
	fsys     fs.FS
	env      string
	funcs    template.FuncMap
	minifier *minify.M

	mu    sync.RWMutex
	pages map[string]*template.Template
}

func NewRenderer(fsys fs.FS, env string, assets *AssetStore) (*Renderer, error) {
	funcs := sprig.HtmlFuncMap()
	for name, fn := range TemplateFuncs(env, assets) {
		funcs[name] = fn
	}

	m := minify.New()
	m.Add("text/html", &minhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})

	r := &Renderer{
		fsys:     fsys,
		env:      env,
		funcs:    funcs,
		minifier: m,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses every page. On error the previously parsed set is kept.
func (r *Renderer) Reload() error {
	entries, err := fs.Glob(r.fsys, path.Join(pagesDir, "*.html"))
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	components, err := fs.Glob(r.fsys, componentsGlob)
	if err != nil {
		return fmt.Errorf("list components: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, pagePath := range entries {
		name := strings.TrimSuffix(path.Base(pagePath), ".html")
		tmpl, err := r.parsePage(pagePath, components)
		if err != nil {
			return fmt.Errorf("page %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

func (r *Renderer) parsePage(pagePath string, components []string) (*template.Template, error) {
	files := append([]string{pagePath}, components...)
	if layout := r.getLayoutPath(pagePath); layout != "" {
		files = append([]string{layout}, files...)
	}
	return template.New(path.Base(files[0])).Funcs(r.funcs).ParseFS(r.fsys, files...)
}

// getLayoutPath reads the "<!-- layout: x.html -->" directive of a page.
func (r *Renderer) getLayoutPath(pagePath string) string {
	f, err := r.fsys.Open(pagePath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, layoutDirective) && strings.HasSuffix(line, "-->") {
			return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, layoutDirective), "-->"))
		}
	}
	return ""
}

// Pages lists the parsed page names in sorted order.
func (r *Renderer) Pages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes page through its layout. Output is minified in prod.
func (r *Renderer) Render(page string, data PageData) ([]byte, error) {
	r.mu.RLock()
	tmpl, ok := r.pages[page]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("page %q: %w", page, ErrNotFound)
	}

	data.Page = page
	if data.Title == "" {
		data.Title = pageTitle(page)
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	data.LiveReload = r.env == "dev"

	entry := "layout"
	if tmpl.Lookup(entry) == nil {
		entry = tmpl.Name()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, entry, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", page, err)
	}

	if r.env != "prod" {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := r.minifier.Minify("text/html", &out, &buf); err != nil {
		return nil, fmt.Errorf("minify %s: %w", page, err)
	}
	return out.Bytes(), nil
}

func pageTitle(page string) string {
	switch page {
	case "index":
		return "Home"
	case NotFoundPage:
		return "Page Not Found"
	default:
		return strings.ToUpper(page[:1]) + page[1:]
	}
}

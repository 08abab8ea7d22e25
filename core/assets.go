package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

const StaticPrefix = "/static/"

// Asset is a static file ready to be served.
type Asset struct {
	Name        string
	Body        []byte
	Gzip        []byte
	ContentType string
	Hash        string
}

// AssetStore reads static files from fsys. In prod css and js are minified,
// gzipped and kept in memory; in dev every Load reads the file again.
type AssetStore struct {
	fsys     fs.FS
	env      string
	minifier *minify.M

	mu    sync.RWMutex
	cache map[string]*Asset
}

func NewAssetStore(fsys fs.FS, env string) *AssetStore {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)

	return &AssetStore{
		fsys:     fsys,
		env:      env,
		minifier: m,
		cache:    make(map[string]*Asset),
	}
}

// Load returns the asset at name, relative to the static root.
func (s *AssetStore) Load(name string) (*Asset, error) {
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("asset %q: %w", name, ErrNotFound)
	}

	if s.env == "prod" {
		s.mu.RLock()
		a, ok := s.cache[name]
		s.mu.RUnlock()
		if ok {
			return a, nil
		}
	}

	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("asset %q: %w", name, ErrNotFound)
	}

	body := raw
	contentType := DetectMimeType(name)
	if s.env == "prod" {
		if minified, err := s.minify(contentType, raw); err == nil {
			body = minified
		}
	}

	a := &Asset{
		Name:        name,
		Body:        body,
		ContentType: contentType,
		Hash:        contentHash(body),
	}

	if s.env == "prod" {
		a.Gzip = gzipBytes(body)
		s.mu.Lock()
		s.cache[name] = a
		s.mu.Unlock()
	}

	return a, nil
}

// Invalidate drops every cached asset.
func (s *AssetStore) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]*Asset)
	s.mu.Unlock()
}

// Versioned appends a content hash to a /static/ URL so it can be cached forever.
func (s *AssetStore) Versioned(urlPath string) string {
	if !strings.HasPrefix(urlPath, StaticPrefix) {
		return urlPath
	}
	a, err := s.Load(strings.TrimPrefix(urlPath, StaticPrefix))
	if err != nil {
		return urlPath
	}
	return fmt.Sprintf("%s%s?v=%s", StaticPrefix, a.Name, a.Hash)
}

func (s *AssetStore) minify(contentType string, raw []byte) ([]byte, error) {
	switch contentType {
	case "text/css", "application/javascript":
	default:
		return raw, nil
	}
	var buf bytes.Buffer
	if err := s.minifier.Minify(contentType, &buf, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DetectMimeType(name string) string {
	switch path.Ext(name) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}

func contentHash(b []byte) string {
	h := md5.Sum(b)
	return hex.EncodeToString(h[:])[:6]
}

func gzipBytes(b []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(b); err != nil {
		return nil
	}
	if err := gz.Close(); err != nil {
		return nil
	}
	return buf.Bytes()
}

// TemplateFuncs are the helpers available to every page on top of sprig.
func TemplateFuncs(env string, assets *AssetStore) template.FuncMap {
	return template.FuncMap{
		"minify": func(urlPath string) string {
			if env != "prod" || assets == nil {
				return urlPath
			}
			return assets.Versioned(urlPath)
		},
		"versioned": func(urlPath string) string {
			if assets == nil {
				return urlPath
			}
			return assets.Versioned(urlPath)
		},
		"props": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				panic("props must be called with even number of arguments")
			}
			m := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					panic("props keys must be strings")
				}
				m[key] = values[i+1]
			}
			return m
		},
		"safeHTML": func(s interface{}) template.HTML {
			switch val := s.(type) {
			case template.HTML:
				return val
			case string:
				return template.HTML(val)
			default:
				return ""
			}
		},
	}
}

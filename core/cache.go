package core

import (
	"os"
	"path/filepath"
	"strings"
)

func cacheDir(config Config, route string) string {
	return filepath.Join(config.OutputDir, filepath.FromSlash(strings.Trim(route, "/")))
}

func GetCachedHTML(config Config, route string) ([]byte, bool) {
	content, err := os.ReadFile(filepath.Join(cacheDir(config, route), "index.html"))
	if err != nil {
		return nil, false
	}
	return content, true
}

// SaveCachedHTML writes index.html and a gzipped sibling for route under OutputDir.
// Each file is replaced with a rename so readers never see a partial page.
func SaveCachedHTML(config Config, route string, html []byte) error {
	outDir := cacheDir(config, route)
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return err
	}

	htmlPath := filepath.Join(outDir, "index.html")
	if err := writeFileAtomic(htmlPath, html); err != nil {
		return err
	}
	return writeFileAtomic(htmlPath+".gz", gzipBytes(html))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

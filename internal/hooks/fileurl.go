package hooks

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// FileURLToPath converts a file: URL to a local path.
func FileURLToPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("the URL must be of scheme file: %q", raw)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("file URL host must be \"localhost\" or empty: %q", raw)
	}
	if u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "", fmt.Errorf("file URL must be absolute: %q", raw)
	}
	return filepath.FromSlash(u.Path), nil
}

// PathToFileURL converts p to an absolute file: URL with escaped characters.
func PathToFileURL(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

package widget

import (
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	filenameStarRE = regexp.MustCompile(`(?i)filename\*\s*=\s*(?:UTF-8)?''([^;]+)`)
	filenameRE     = regexp.MustCompile(`(?i)filename\s*=\s*"?([^";]+)"?`)
)

// FileNameFromDisposition extracts the suggested download name of a reply.
// RFC 5987 `filename*` wins over `filename`. Returns "" when absent.
func FileNameFromDisposition(h http.Header) string {
	cd := h.Get("Content-Disposition")
	if cd == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(cd); err == nil {
		if name := params["filename"]; name != "" {
			return sanitizeName(name)
		}
	}

	// lenient fallback for headers ParseMediaType rejects
	if m := filenameStarRE.FindStringSubmatch(cd); m != nil {
		if name, err := url.PathUnescape(strings.TrimSpace(m[1])); err == nil && name != "" {
			return sanitizeName(name)
		}
	}
	if m := filenameRE.FindStringSubmatch(cd); m != nil {
		return sanitizeName(strings.TrimSpace(m[1]))
	}
	return ""
}

// sanitizeName keeps the last path element. Names that would not resolve to a
// file inside the download directory come back empty.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	switch name {
	case "", ".", "..", "/":
		return ""
	}
	return name
}

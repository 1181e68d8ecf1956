package utils

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const OctetStream = "application/octet-stream"

// DetectContentType sniffs the leading bytes of r and falls back to the file extension
// when the content is not recognised.
func DetectContentType(name string, r io.Reader) string {
	if r != nil {
		if m, err := mimetype.DetectReader(r); err == nil {
			if t := BaseMediaType(m.String()); t != OctetStream && t != "text/plain" {
				return t
			}
		}
	}
	return ContentTypeByExt(name)
}

// ContentTypeByExt resolves a media type from the extension only.
func ContentTypeByExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case "":
		return OctetStream
	case ".txt", ".md":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".ods":
		return "application/vnd.oasis.opendocument.spreadsheet"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return BaseMediaType(t)
	}
	return OctetStream
}

// BaseMediaType strips parameters such as charset: "text/plain; charset=utf-8" -> "text/plain"
func BaseMediaType(t string) string {
	base, _, _ := strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// Ext returns the lowercase extension of name without the leading dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Stem returns the file name without directory and extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

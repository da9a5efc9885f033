package storage

import (
	"mime"
	"path/filepath"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ContentType guesses the MIME type of path from its extension.
func ContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == ".xlsx" {
		return xlsxContentType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

package aiimport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabula/docx"
	"github.com/tsawler/tabula/odt"
)

const (
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeOdt  = "application/vnd.oasis.opendocument.text"
)

type textReader interface {
	Text() (string, error)
	Close() error
}

// documentKind reports "docx", "odt" or "" for an upload.
func documentKind(f File) string {
	mime := strings.ToLower(strings.TrimSpace(f.MimeType))
	ext := strings.ToLower(filepath.Ext(f.Name))
	switch {
	case mime == mimeDocx || ext == ".docx":
		return "docx"
	case mime == mimeOdt || ext == ".odt":
		return "odt"
	default:
		return ""
	}
}

// extractDocumentText 读取 DOCX/ODT 的正文文本；两种格式都需要落盘后再解析。
func extractDocumentText(f File) (string, error) {
	kind := documentKind(f)
	if kind == "" {
		return "", nil
	}

	tmp, err := os.CreateTemp("", "curriculo-import-*."+kind)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	var r textReader
	switch kind {
	case "docx":
		r, err = docx.Open(path)
	case "odt":
		r, err = odt.Open(path)
	}
	if err != nil {
		return "", fmt.Errorf("open %s: %w", kind, err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		return "", fmt.Errorf("read %s text: %w", kind, err)
	}
	return strings.TrimSpace(text), nil
}

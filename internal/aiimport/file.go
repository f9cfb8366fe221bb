package aiimport

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// File is an uploaded résumé model.
type File struct {
	Name     string
	MimeType string
	Data     []byte
	// Text holds extracted text for formats no provider reads natively.
	Text string
}

func (f File) mime() string {
	if m := strings.TrimSpace(f.MimeType); m != "" {
		return m
	}
	return "application/octet-stream"
}

func (f File) isImage() bool {
	return strings.HasPrefix(strings.ToLower(f.mime()), "image/")
}

func isTextLikeMime(mimeType string) bool {
	token := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(token, ';'); i >= 0 {
		token = strings.TrimSpace(token[:i])
	}
	if strings.HasPrefix(token, "text/") {
		return true
	}
	switch token {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	}
	return false
}

// inlineText returns the text to send for the file and whether the file
// should travel as text at all.
func (f File) inlineText() (string, bool) {
	var source string
	switch {
	case f.Text != "":
		source = f.Text
	case isTextLikeMime(f.mime()):
		source = string(f.Data)
	default:
		return "", false
	}
	return textPartPrefix + truncateRunes(strings.ToValidUTF8(source, ""), MaxTextChars), true
}

func (f File) base64() string {
	return base64.StdEncoding.EncodeToString(f.Data)
}

func (f File) dataURL() string {
	return "data:" + f.mime() + ";base64," + f.base64()
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

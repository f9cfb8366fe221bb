package storage

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const exportsRoot = "exports"

// ResumePrefix 是某份简历全部导出文件的公共前缀。
func ResumePrefix(ownerID, resumeID uint) string {
	return fmt.Sprintf("%s/%d/%d/", exportsRoot, ownerID, resumeID)
}

// ExportKey builds exports/<owner>/<resume>/<uuid>.<ext>.
func ExportKey(ownerID, resumeID uint, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return ResumePrefix(ownerID, resumeID) + uuid.NewString() + "." + ext
}

// OwnsKey reports whether key lives under the owner's export space for resumeID.
// Keys with path traversal segments never match.
func OwnsKey(key string, ownerID, resumeID uint) bool {
	if strings.Contains(key, "..") || path.Clean(key) != key {
		return false
	}
	prefix := ResumePrefix(ownerID, resumeID)
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	rest := strings.TrimPrefix(key, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return false
	}
	name, ext, ok := strings.Cut(rest, ".")
	if !ok || (ext != "pdf" && ext != "docx") {
		return false
	}
	_, err := uuid.Parse(name)
	return err == nil
}

// ParseExportKey extracts the owner and résumé ids from an export key.
func ParseExportKey(key string) (ownerID, resumeID uint, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != exportsRoot {
		return 0, 0, false
	}
	o, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	r, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	if !OwnsKey(key, uint(o), uint(r)) {
		return 0, 0, false
	}
	return uint(o), uint(r), true
}

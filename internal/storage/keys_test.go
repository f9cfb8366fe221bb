package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestExportKeyLayout(t *testing.T) {
	key := ExportKey(3, 9, ".PDF")
	if !strings.HasPrefix(key, "exports/3/9/") || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if !OwnsKey(key, 3, 9) {
		t.Fatalf("owner should own %q", key)
	}
	if OwnsKey(key, 4, 9) || OwnsKey(key, 3, 10) {
		t.Fatalf("other owners must not match %q", key)
	}

	owner, resumeID, ok := ParseExportKey(key)
	if !ok || owner != 3 || resumeID != 9 {
		t.Fatalf("ParseExportKey(%q) = %d, %d, %v", key, owner, resumeID, ok)
	}
}

func TestOwnsKeyRejectsTampering(t *testing.T) {
	cases := []string{
		"exports/3/9/../10/x.pdf",
		"exports/3/9/not-a-uuid.pdf",
		"exports/3/9/sub/0b6a1c4e-1f59-4a8e-9c3e-6b1d1c1f9a11.pdf",
		"exports/3/9/0b6a1c4e-1f59-4a8e-9c3e-6b1d1c1f9a11.exe",
		"exports/3/9/",
	}
	for _, key := range cases {
		if OwnsKey(key, 3, 9) {
			t.Fatalf("OwnsKey(%q) should be false", key)
		}
	}
	if _, _, ok := ParseExportKey("uploads/3/9/x.pdf"); ok {
		t.Fatalf("foreign root must not parse")
	}
}

func TestErrorClassifiers(t *testing.T) {
	if !IsNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}) {
		t.Fatalf("NoSuchKey not detected")
	}
	if !IsNoSuchBucket(minio.ErrorResponse{Code: "NoSuchBucket"}) {
		t.Fatalf("NoSuchBucket not detected")
	}
	if IsNoSuchKey(errors.New("connection refused")) || IsNoSuchKey(nil) {
		t.Fatalf("unexpected NoSuchKey match")
	}
}

func TestParseBucketLookup(t *testing.T) {
	for raw, want := range map[string]minio.BucketLookupType{
		"":     minio.BucketLookupAuto,
		"DNS":  minio.BucketLookupDNS,
		"path": minio.BucketLookupPath,
	} {
		got, err := parseBucketLookup(raw)
		if err != nil || got != want {
			t.Fatalf("parseBucketLookup(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := parseBucketLookup("virtual"); err == nil {
		t.Fatalf("expected error")
	}
}

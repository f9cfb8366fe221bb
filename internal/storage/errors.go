package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

var (
	missingKeyCodes    = []string{"nosuchkey", "notfound"}
	missingBucketCodes = []string{"nosuchbucket"}
)

// responseCode 取出 MinIO 返回的错误码（小写），非 MinIO 错误返回空串。
func responseCode(err error) string {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return strings.ToLower(strings.TrimSpace(resp.Code))
	}
	return ""
}

func matches(err error, codes []string, phrases ...string) bool {
	if err == nil {
		return false
	}
	if code := responseCode(err); code != "" {
		for _, c := range codes {
			if code == c {
				return true
			}
		}
	}
	// 经过网关包装后只剩错误文本
	msg := strings.ToLower(err.Error())
	for _, p := range append(codes[:1:1], phrases...) {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsNoSuchKey 对象不存在。
func IsNoSuchKey(err error) bool {
	return matches(err, missingKeyCodes, "specified key does not exist", "not found")
}

// IsNoSuchBucket Bucket 不存在。
func IsNoSuchBucket(err error) bool {
	return matches(err, missingBucketCodes, "specified bucket does not exist")
}

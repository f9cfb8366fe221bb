package errcode

import "curriculo/internal/apperror"

// 推送给前端的错误码约定：
// - 0：无错误
// - 4xxx：请求本身的问题，重试无意义
// - 5xxx：系统错误
const (
	OK               = 0
	InvalidRequest   = 4000
	ResourceNotFound = 4004
	FileTooLarge     = 4013
	SystemError      = 5000
	UpstreamFailed   = 5002
	ServiceDown      = 5003
	UpstreamTimeout  = 5004
)

// FromError 把 apperror 的分类映射为推送错误码。
func FromError(err error) int {
	if err == nil {
		return OK
	}
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return InvalidRequest
	case apperror.KindNotFound:
		return ResourceNotFound
	case apperror.KindTooLarge:
		return FileTooLarge
	case apperror.KindUpstream:
		return UpstreamFailed
	case apperror.KindUnavailable:
		return ServiceDown
	case apperror.KindUpstreamTimeout:
		return UpstreamTimeout
	default:
		return SystemError
	}
}

// Retryable reports whether a failure with this code may succeed on retry.
func Retryable(code int) bool {
	return code >= 5000
}

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"curriculo/internal/api/middleware"
	"curriculo/internal/apperror"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func Unauthorized(c *gin.Context)           { Error(c, http.StatusUnauthorized, "unauthorized") }
func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func Forbidden(c *gin.Context, msg string)  { Error(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }
func TooManyRequests(c *gin.Context, msg string) {
	Error(c, http.StatusTooManyRequests, msg)
}

// RespondError 将 apperror 映射为 HTTP 状态与 {"error": msg}；内部错误只记录日志，不外泄原因。
func RespondError(c *gin.Context, err error) {
	status := apperror.StatusOf(err)
	log := middleware.LoggerFromContext(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			slog.Int("status", status),
			slog.String("kind", apperror.KindOf(err).String()),
			slog.Any("error", err),
		)
	}
	Error(c, status, apperror.Message(err))
}

// BindError 处理 ShouldBind* 的失败。
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		BadRequest(c, FormatValidationErrors(err))
		return
	}
	BadRequest(c, "invalid request body")
}

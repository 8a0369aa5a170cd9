package handlers

import (
	"errors"
	"net/http"

	"newsdesk/internal/middleware"
	"newsdesk/internal/models"
	"newsdesk/internal/services"
	"newsdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var statusByKind = map[services.Kind]int{
	services.KindUnauthenticated:  http.StatusUnauthorized,
	services.KindPermissionDenied: http.StatusForbidden,
	services.KindNotFound:         http.StatusNotFound,
	services.KindValidation:       http.StatusBadRequest,
	services.KindConflict:         http.StatusConflict,
	services.KindTypeMismatch:     http.StatusBadRequest,
	services.KindInternal:         http.StatusInternalServerError,
}

// respondError 把 Facade 错误转成 {"error": {...}}，内部错误只记录日志不外泄
func respondError(c *gin.Context, err error) {
	var e *services.Error
	if !errors.As(err, &e) {
		e = services.ErrInternal(err)
	}
	status, ok := statusByKind[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": e})
}

// bindJSON 请求体格式错误按 validation_error 返回
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, services.ErrValidation("body", "malformed JSON: "+err.Error()))
		return false
	}
	return true
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// queryInt 解析失败时返回默认值
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	if n := utils.StringToInt(raw); n != 0 {
		return n
	}
	return def
}

func pageFromQuery(c *gin.Context) services.Page {
	return services.Page{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 0),
	}
}

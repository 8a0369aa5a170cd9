package middleware

import (
	"context"
	"net/http"
	"strings"

	"newsdesk/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	CheckUserKey   = "user"
	SessionUserKey = "user_id"
)

// TokenVerifier 校验 Bearer 令牌，返回用户 ID
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// UserLoader 按 ID 加载用户
type UserLoader interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser 先看 Authorization 头，再看 session，解析出的用户放进上下文
// 无效令牌直接返回 401，没有凭证则作为匿名用户继续
func LoadUser(tokens TokenVerifier, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint

		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				abortUnauthenticated(c, "Authorization header format must be Bearer {token}")
				return
			}
			id, err := tokens.Verify(parts[1])
			if err != nil {
				abortUnauthenticated(c, "invalid or expired token")
				return
			}
			userID = id
		} else {
			session := sessions.Default(c)
			if v, ok := session.Get(SessionUserKey).(uint); ok {
				userID = v
			}
		}

		if userID != 0 {
			user, err := users.UserByID(c.Request.Context(), userID)
			if err == nil {
				c.Set(CheckUserKey, user)
			} else {
				log.Ctx(c.Request.Context()).Debug().Err(err).Uint("user_id", userID).Msg("credential refers to unknown user")
			}
		}
		c.Next()
	}
}

// AuthRequired 未登录返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			abortUnauthenticated(c, "authentication required")
			return
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户，匿名时返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"kind": "unauthenticated", "message": message},
	})
}

package handlers

import (
	"net/http"

	"newsdesk/internal/auth"
	"newsdesk/internal/middleware"
	"newsdesk/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type UserHandler struct {
	portal *services.Portal
	tokens *auth.TokenService
}

func NewUserHandler(portal *services.Portal, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{portal: portal, tokens: tokens}
}

// Signup 注册；已登录的编辑可以直接指定角色
func (h *UserHandler) Signup(c *gin.Context) {
	var in services.SignupInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.portal.Signup(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Ctx(c.Request.Context()).Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user signed up")
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login 返回 JWT，同时写入 session
func (h *UserHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.portal.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	token, expires, err := h.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		respondError(c, services.ErrInternal(err))
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("failed to save session")
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires,
		"user":       user,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("failed to clear session")
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me 当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, services.ErrUnauthenticated(""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.portal.GetUser(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe 修改自己的资料
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var patch services.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}
	user, err := h.portal.UpdateProfile(c.Request.Context(), currentUser(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Update 编辑管理其他用户
func (h *UserHandler) Update(c *gin.Context) {
	var patch services.UserPatch
	if !bindJSON(c, &patch) {
		return
	}
	user, err := h.portal.UpdateUser(c.Request.Context(), currentUser(c), c.Param("ref"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

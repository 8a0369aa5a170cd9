package handlers

import (
	"net/http"

	"newsdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	portal *services.Portal
}

func NewEngagementHandler(portal *services.Portal) *EngagementHandler {
	return &EngagementHandler{portal: portal}
}

// Comments 文章评论树
func (h *EngagementHandler) Comments(c *gin.Context) {
	threads, err := h.portal.ListComments(c.Request.Context(), currentUser(c), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": threads})
}

func (h *EngagementHandler) AddComment(c *gin.Context) {
	var in services.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.portal.AddComment(c.Request.Context(), currentUser(c), c.Param("ref"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// DeleteComment 删除评论及其回复
func (h *EngagementHandler) DeleteComment(c *gin.Context) {
	if err := h.portal.DeleteComment(c.Request.Context(), currentUser(c), c.Param("ref")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Bookmarks 当前用户的收藏列表
func (h *EngagementHandler) Bookmarks(c *gin.Context) {
	bookmarks, err := h.portal.ListBookmarks(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// Like 点赞/取消点赞
func (h *EngagementHandler) Like(c *gin.Context) {
	result, err := h.portal.ToggleLike(c.Request.Context(), currentUser(c), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Bookmark 收藏/取消收藏
func (h *EngagementHandler) Bookmark(c *gin.Context) {
	result, err := h.portal.ToggleBookmark(c.Request.Context(), currentUser(c), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

package handlers

import (
	"net/http"

	"newsdesk/internal/services"
	"newsdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	portal *services.Portal
}

func NewArticleHandler(portal *services.Portal) *ArticleHandler {
	return &ArticleHandler{portal: portal}
}

// List 文章列表，支持 search/category/tag/author/featured/status/order_by 过滤
func (h *ArticleHandler) List(c *gin.Context) {
	filter := services.ArticleFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Author:   c.Query("author"),
		Featured: utils.StringToBoolPtr(c.Query("featured")),
		Status:   c.Query("status"),
		OrderBy:  c.Query("order_by"),
		Page:     pageFromQuery(c),
	}
	list, err := h.portal.ListArticles(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArticleHandler) Detail(c *gin.Context) {
	article, err := h.portal.GetArticle(c.Request.Context(), currentUser(c), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *ArticleHandler) Create(c *gin.Context) {
	var in services.ArticleInput
	if !bindJSON(c, &in) {
		return
	}
	article, err := h.portal.CreateArticle(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

func (h *ArticleHandler) Update(c *gin.Context) {
	var patch services.ArticlePatch
	if !bindJSON(c, &patch) {
		return
	}
	article, err := h.portal.UpdateArticle(c.Request.Context(), currentUser(c), c.Param("ref"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.portal.DeleteArticle(c.Request.Context(), currentUser(c), c.Param("ref")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

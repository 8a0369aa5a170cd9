package handlers

import (
	"net/http"

	"newsdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// TaxonomyHandler 分类和标签
type TaxonomyHandler struct {
	portal *services.Portal
}

func NewTaxonomyHandler(portal *services.Portal) *TaxonomyHandler {
	return &TaxonomyHandler{portal: portal}
}

func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	categories, err := h.portal.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *TaxonomyHandler) Category(c *gin.Context) {
	category, err := h.portal.GetCategory(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "is_subcategory": category.IsSubcategory()})
}

func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	category, err := h.portal.CreateCategory(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	var patch services.CategoryPatch
	if !bindJSON(c, &patch) {
		return
	}
	category, err := h.portal.UpdateCategory(c.Request.Context(), currentUser(c), c.Param("ref"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory 可以通过 ?reassign_to= 或请求体指定迁移目标
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	in := services.DeleteCategoryInput{ReassignTo: services.ID(c.Query("reassign_to"))}
	if in.ReassignTo == "" && c.Request.ContentLength > 0 {
		if !bindJSON(c, &in) {
			return
		}
	}
	if err := h.portal.DeleteCategory(c.Request.Context(), currentUser(c), c.Param("ref"), in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *TaxonomyHandler) ListTags(c *gin.Context) {
	tags, err := h.portal.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *TaxonomyHandler) Tag(c *gin.Context) {
	tag, err := h.portal.GetTag(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

func (h *TaxonomyHandler) CreateTag(c *gin.Context) {
	var in services.TagInput
	if !bindJSON(c, &in) {
		return
	}
	tag, err := h.portal.CreateTag(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

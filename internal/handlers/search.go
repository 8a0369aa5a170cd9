package handlers

import (
	"net/http"

	"newsdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	portal *services.Portal
}

func NewSearchHandler(portal *services.Portal) *SearchHandler {
	return &SearchHandler{portal: portal}
}

// Search GET /api/search?q=&category=
func (h *SearchHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		term = c.Query("term")
	}
	result, err := h.portal.SearchArticles(c.Request.Context(), currentUser(c), services.SearchInput{
		Term:     term,
		Category: c.Query("category"),
		Page:     pageFromQuery(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

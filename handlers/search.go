package handlers

import (
	"net/http"

	"roaddarts/services/search"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	Service search.SearchService
	Paging  search.Paging
}

func NewSearchHandler(svc search.SearchService, paging search.Paging) *SearchHandler {
	return &SearchHandler{Service: svc, Paging: paging}
}

// SearchListings handles GET /api/businesses.
func (h *SearchHandler) SearchListings(c *gin.Context) {
	criteria, err := search.ParseCriteria(c.Request.URL.Query(), h.Paging)
	if err != nil {
		respondError(c, err, "")
		return
	}
	res, err := h.Service.Search(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, err, "Failed to fetch businesses")
		return
	}
	c.JSON(http.StatusOK, res)
}

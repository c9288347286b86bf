package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medinfo-backend/internal/catalog"
	"medinfo-backend/internal/search"
	"medinfo-backend/internal/shared/response"
)

type SearchHandler struct {
	service *search.Service
}

func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /api/search?query=<term>.
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "Search results fetched successfully", results)
}

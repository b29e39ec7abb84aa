package handlers

import (
	"net/http"

	"roaddarts/services/analytics"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Service analytics.AnalyticsService
}

func NewAnalyticsHandler(svc analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: svc}
}

// Report handles GET /api/analytics/:report.
func (h *AnalyticsHandler) Report(c *gin.Context) {
	name := c.Param("report")
	out, err := h.Service.Run(c.Request.Context(), name)
	if err != nil {
		respondError(c, err, "Failed to fetch "+name)
		return
	}
	if rows, ok := out.([]map[string]string); ok {
		c.JSON(http.StatusOK, gin.H{"data": rows})
		return
	}
	c.JSON(http.StatusOK, out)
}

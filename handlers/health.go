package handlers

import (
	"net/http"

	"roaddarts/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the last check of the backing services.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

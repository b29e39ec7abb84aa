package handlers

import (
	"net/http"

	"roaddarts/middleware"
	"roaddarts/models"
	"roaddarts/services/review"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Service review.ReviewService
}

func NewReviewHandler(svc review.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: svc}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var in models.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	rv, err := h.Service.Create(c.Request.Context(), middleware.ActorFrom(c), c.Param("listingId"), in)
	if err != nil {
		respondError(c, err, "Failed to create review")
		return
	}
	c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.Service.List(c.Request.Context(), c.Param("listingId"))
	if err != nil {
		respondError(c, err, "Failed to fetch reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reviews})
}

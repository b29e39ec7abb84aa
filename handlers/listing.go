package handlers

import (
	"mime/multipart"
	"net/http"

	"roaddarts/middleware"
	"roaddarts/models"
	"roaddarts/services/listing"
	"roaddarts/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ListingHandler struct {
	Service listing.ListingService
}

func NewListingHandler(svc listing.ListingService) *ListingHandler {
	return &ListingHandler{Service: svc}
}

func (h *ListingHandler) GetBySlug(c *gin.Context) {
	l, err := h.Service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to fetch business")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *ListingHandler) Create(c *gin.Context) {
	var in models.Listing
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.Service.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respondError(c, err, "Failed to create business")
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *ListingHandler) BulkCreate(c *gin.Context) {
	var in []models.Listing
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.BulkCreate(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respondError(c, err, "Failed to create businesses")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": out, "count": len(out)})
}

func (h *ListingHandler) Update(c *gin.Context) {
	var in models.Listing
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.Service.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err, "Failed to update business")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete business")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Business deleted successfully"})
}

type nameCheckRequest struct {
	Name      string `json:"name" binding:"required"`
	ExcludeID string `json:"excludeId"`
}

func (h *ListingHandler) CheckName(c *gin.Context) {
	var req nameCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ok, err := h.Service.NameAvailable(c.Request.Context(), req.Name, req.ExcludeID)
	if err != nil {
		respondError(c, err, "Failed to check business name")
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": ok})
}

func (h *ListingHandler) CheckEdit(c *gin.Context) {
	ok, err := h.Service.CanEdit(c.Request.Context(), middleware.ActorFrom(c), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to check permission")
		return
	}
	c.JSON(http.StatusOK, gin.H{"canEdit": ok})
}

// UploadMedia accepts multipart fields businessLogo, businessCover and images.
func (h *ListingHandler) UploadMedia(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}
	var files []listing.MediaFile
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, field := range []string{listing.MediaLogo, listing.MediaCover, listing.MediaImages} {
		for _, fh := range form.File[field] {
			f, err := fh.Open()
			if err != nil {
				getLogger(c).Warn("Failed to open upload", zap.String("file", fh.Filename), zap.Error(err))
				badRequest(c, err)
				return
			}
			opened = append(opened, f)
			files = append(files, listing.MediaFile{Field: field, Reader: f})
		}
	}
	if len(files) == 0 {
		utils.JSONError(c, http.StatusBadRequest, "No files uploaded", nil)
		return
	}

	l, err := h.Service.UploadMedia(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), files)
	if err != nil {
		respondError(c, err, "Failed to upload media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": l.Media})
}

type mediaDeleteRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *ListingHandler) DeleteMedia(c *gin.Context) {
	var req mediaDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.Service.DeleteMedia(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.URL)
	if err != nil {
		respondError(c, err, "Failed to delete media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": l.Media})
}

func (h *ListingHandler) ContactOwner(c *gin.Context) {
	var msg listing.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ContactOwner(c.Request.Context(), c.Param("id"), msg); err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent to the business owner"})
}

// BackfillSlugs handles GET /api/businesses/addslug.
func (h *ListingHandler) BackfillSlugs(c *gin.Context) {
	n, err := h.Service.BackfillSlugs(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err, "Failed to update slugs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slugs updated", "updated": n})
}

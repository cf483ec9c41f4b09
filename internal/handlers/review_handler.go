package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createReviewRequest struct {
	VeterinarianID string  `json:"veterinarianId" validate:"required"`
	Rating         float64 `json:"rating" validate:"min=0,max=5"`
	Review         string  `json:"review"`
}

func (h *Handler) CreateReview(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	vetID, err := primitive.ObjectIDFromHex(req.VeterinarianID)
	if err != nil {
		failValidation(c, "Invalid veterinarianId")
		return
	}

	review, err := h.Reviews.Create(c.Request.Context(), userID, role, vetID, req.Rating, req.Review)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Review submitted", review)
}

func (h *Handler) UpdateReview(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Rating float64 `json:"rating" validate:"min=0,max=5"`
		Review string  `json:"review"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	review, err := h.Reviews.Update(c.Request.Context(), userID, reviewID, req.Rating, req.Review)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Review updated", review)
}

func (h *Handler) DeleteReview(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Reviews.Delete(c.Request.Context(), userID, role, reviewID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Review deleted", nil)
}

// ListVetReviews returns the reviews left for one veterinarian.
func (h *Handler) ListVetReviews(c *gin.Context) {
	vetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.Reviews.ListForVet(c.Request.Context(), vetID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", reviews)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

type createAnimalRequest struct {
	Name      string `json:"name" validate:"required,min=1"`
	Breed     string `json:"breed"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birthDate"`
}

func (h *Handler) CreateAnimal(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var req createAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	animal := models.Animal{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		OwnerID:   userID,
		Breed:     req.Breed,
		Gender:    req.Gender,
		CreatedAt: time.Now(),
	}
	if req.BirthDate != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			failValidation(c, "Invalid birthDate, use YYYY-MM-DD")
			return
		}
		animal.BirthDate = &t
	}

	if err := h.Animals.Insert(c.Request.Context(), &animal); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Animal registered", animal)
}

func (h *Handler) ListAnimals(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	animals, err := h.Animals.FindByOwner(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", animals)
}

func (h *Handler) UpdateAnimal(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	animalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	animal, err := h.Animals.FindByID(c.Request.Context(), animalID)
	if err != nil {
		fail(c, err)
		return
	}
	if animal.OwnerID != userID {
		fail(c, errs.Authorization("this animal does not belong to you"))
		return
	}

	var req struct {
		Name      *string `json:"name,omitempty"`
		Breed     *string `json:"breed,omitempty"`
		Gender    *string `json:"gender,omitempty"`
		BirthDate *string `json:"birthDate,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Breed != nil {
		fields["breed"] = *req.Breed
	}
	if req.Gender != nil {
		fields["gender"] = *req.Gender
	}
	if req.BirthDate != nil {
		t, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			failValidation(c, "Invalid birthDate, use YYYY-MM-DD")
			return
		}
		fields["birthDate"] = t
	}
	if len(fields) == 0 {
		failValidation(c, "No update fields provided")
		return
	}

	if err := h.Animals.Update(c.Request.Context(), animalID, fields); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Animal updated", nil)
}

func (h *Handler) DeleteAnimal(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	animalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	animal, err := h.Animals.FindByID(c.Request.Context(), animalID)
	if err != nil {
		fail(c, err)
		return
	}
	if animal.OwnerID != userID {
		fail(c, errs.Authorization("this animal does not belong to you"))
		return
	}

	if err := h.Animals.Delete(c.Request.Context(), animalID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Animal deleted", nil)
}

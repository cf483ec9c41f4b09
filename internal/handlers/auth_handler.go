package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
	"github.com/hasinarivo/vetcare-api/internal/utils"
)

type RegisterUserRequest struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleClient
	}
	if !role.Valid() {
		failValidation(c, "Unknown role")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		fail(c, errs.Internal("failed to hash password", err))
		return
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      role,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: time.Now(),
	}

	if err := h.Users.Insert(c.Request.Context(), &user); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Account created", user)
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		// Same answer for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		fail(c, errs.Internal("could not generate token", err))
		return
	}

	user.Password = ""
	respond(c, http.StatusOK, "Logged in", gin.H{"token": token, "user": user})
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}

func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var req struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}

	fields := bson.M{}
	if req.FullName != "" {
		fields["fullName"] = req.FullName
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if req.Address != "" {
		fields["address"] = req.Address
	}
	if len(fields) == 0 {
		failValidation(c, "No update fields provided")
		return
	}

	if err := h.Users.UpdateProfile(c.Request.Context(), userID, fields); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", nil)
}

// ListVeterinarians is the public practitioner directory, with their
// aggregate ratings.
func (h *Handler) ListVeterinarians(c *gin.Context) {
	vets, err := h.Users.FindVeterinarians(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	for i := range vets {
		vets[i].Password = ""
	}
	respond(c, http.StatusOK, "", vets)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/models"
	"github.com/hasinarivo/vetcare-api/internal/services"
)

type createAppointmentRequest struct {
	Date            string   `json:"date" validate:"required"`
	AnimalID        string   `json:"animalId" validate:"required"`
	VeterinaireID   string   `json:"veterinaireId"`
	Type            string   `json:"type" validate:"required"`
	Services        []string `json:"services"`
	CaseDescription string   `json:"caseDescription"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		failValidation(c, err.Error())
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		failValidation(c, "Invalid date, use RFC3339")
		return
	}
	animalID, err := primitive.ObjectIDFromHex(req.AnimalID)
	if err != nil {
		failValidation(c, "Invalid animalId")
		return
	}

	in := services.CreateAppointmentInput{
		AnimalID:        animalID,
		Date:            date,
		Type:            models.AppointmentType(req.Type),
		Services:        req.Services,
		CaseDescription: req.CaseDescription,
	}
	if req.VeterinaireID != "" {
		vetID, err := primitive.ObjectIDFromHex(req.VeterinaireID)
		if err != nil {
			failValidation(c, "Invalid veterinaireId")
			return
		}
		in.VeterinaireID = &vetID
	}

	apt, err := h.Appointments.Create(c.Request.Context(), userID, role, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Appointment requested", apt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	apptID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Date            *string   `json:"date,omitempty"`
		Type            *string   `json:"type,omitempty"`
		Services        *[]string `json:"services,omitempty"`
		CaseDescription *string   `json:"caseDescription,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Invalid request body")
		return
	}

	var patch services.AppointmentPatch
	if req.Date != nil {
		t, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			failValidation(c, "Invalid date, use RFC3339")
			return
		}
		patch.Date = &t
	}
	if req.Type != nil {
		at := models.AppointmentType(*req.Type)
		patch.Type = &at
	}
	patch.Services = req.Services
	patch.CaseDescription = req.CaseDescription

	apt, err := h.Appointments.Update(c.Request.Context(), userID, apptID, patch)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Appointment updated", apt)
}

func (h *Handler) AcceptAppointment(c *gin.Context) {
	h.decideAppointment(c, h.Appointments.Accept, "Appointment accepted")
}

func (h *Handler) RejectAppointment(c *gin.Context) {
	h.decideAppointment(c, h.Appointments.Reject, "Appointment rejected")
}

func (h *Handler) decideAppointment(c *gin.Context, decide func(ctx context.Context, id primitive.ObjectID) error, message string) {
	apptID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := decide(c.Request.Context(), apptID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, message, nil)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	apptID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Appointments.Delete(c.Request.Context(), userID, role, apptID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Appointment deleted", nil)
}

// ListActiveAppointments returns the caller's pending and accepted
// appointments, soonest first.
func (h *Handler) ListActiveAppointments(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	appointments, err := h.Appointments.ListActive(c.Request.Context(), userID, role)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", appointments)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}
	apptID, ok := pathID(c, "id")
	if !ok {
		return
	}
	apt, err := h.Appointments.Get(c.Request.Context(), userID, role, apptID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", apt)
}

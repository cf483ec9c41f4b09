package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hasinarivo/vetcare-api/internal/errs"
	"github.com/hasinarivo/vetcare-api/internal/models"
	"github.com/hasinarivo/vetcare-api/internal/realtime"
	"github.com/hasinarivo/vetcare-api/internal/services"
	"github.com/hasinarivo/vetcare-api/internal/store"
)

// Handler bundles the stores and services the HTTP layer works with.
type Handler struct {
	Users         *store.UserRepo
	Animals       *store.AnimalRepo
	Posts         *store.PostRepo
	Appointments  *services.AppointmentService
	Chat          *services.ChatService
	Reviews       *services.ReviewService
	Notifications *services.NotificationService
	Hub           *realtime.Hub

	validate *validator.Validate
}

func NewHandler(
	users *store.UserRepo,
	animals *store.AnimalRepo,
	posts *store.PostRepo,
	appointments *services.AppointmentService,
	chat *services.ChatService,
	reviews *services.ReviewService,
	notifications *services.NotificationService,
	hub *realtime.Hub,
) *Handler {
	return &Handler{
		Users:         users,
		Animals:       animals,
		Posts:         posts,
		Appointments:  appointments,
		Chat:          chat,
		Reviews:       reviews,
		Notifications: notifications,
		Hub:           hub,
		validate:      validator.New(),
	}
}

// respond writes the success envelope.
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// fail maps a service error onto the envelope. Internal causes are logged
// server-side and never shown to the caller.
func fail(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(errs.HTTPStatus(err), gin.H{"success": false, "error": errs.Message(err)})
}

func failValidation(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// caller pulls the authenticated identity set by the auth middleware.
func caller(c *gin.Context) (primitive.ObjectID, models.Role, bool) {
	idHex, _ := c.Get("userID")
	roleVal, _ := c.Get("userRole")

	hex, ok := idHex.(string)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, "", false
	}
	role, ok := roleVal.(models.Role)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	return id, role, true
}

// pathID parses an ObjectID path parameter.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		failValidation(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

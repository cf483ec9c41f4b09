package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hasinarivo/vetcare-api/internal/middleware"
	"github.com/hasinarivo/vetcare-api/internal/models"
)

// RegisterRoutes mounts the public auth endpoints and the authenticated
// /api surface on the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
	}

	staff := middleware.RequireRoles(models.RoleVeterinarian, models.RoleSecretary, models.RoleAdmin)

	apiRoutes := r.Group("/api")
	apiRoutes.Use(middleware.AuthMiddleware())
	{
		apiRoutes.GET("/user/me", h.GetCurrentUser)
		apiRoutes.PUT("/user/me", h.UpdateCurrentUser)
		apiRoutes.GET("/veterinarians", h.ListVeterinarians)
		apiRoutes.GET("/veterinarians/:id/reviews", h.ListVetReviews)

		apiRoutes.POST("/reviews", h.CreateReview)
		apiRoutes.PUT("/reviews/:id", h.UpdateReview)
		apiRoutes.DELETE("/reviews/:id", h.DeleteReview)

		apiRoutes.POST("/animals", h.CreateAnimal)
		apiRoutes.GET("/animals", h.ListAnimals)
		apiRoutes.PUT("/animals/:id", h.UpdateAnimal)
		apiRoutes.DELETE("/animals/:id", h.DeleteAnimal)

		apiRoutes.POST("/appointments", h.CreateAppointment)
		apiRoutes.GET("/appointments/active", h.ListActiveAppointments)
		apiRoutes.GET("/appointments/:id", h.GetAppointment)
		apiRoutes.PUT("/appointments/:id", h.UpdateAppointment)
		apiRoutes.DELETE("/appointments/:id", h.DeleteAppointment)
		apiRoutes.PATCH("/appointments/:id/accept", staff, h.AcceptAppointment)
		apiRoutes.PATCH("/appointments/:id/reject", staff, h.RejectAppointment)

		apiRoutes.POST("/conversations", h.StartConversation)
		apiRoutes.GET("/conversations", h.ListConversations)
		apiRoutes.GET("/conversations/:id/messages", h.ListMessages)
		apiRoutes.POST("/conversations/:id/messages", h.PostMessage)
		apiRoutes.POST("/conversations/:id/read", h.MarkMessagesRead)
		apiRoutes.GET("/conversations/:id/unread", h.UnreadCount)

		apiRoutes.GET("/notifications", h.ListNotifications)
		apiRoutes.PATCH("/notifications/:id/read", h.MarkNotificationRead)

		apiRoutes.POST("/posts", h.CreatePost)
		apiRoutes.GET("/posts", h.ListPosts)
		apiRoutes.PUT("/posts/:id", h.UpdatePost)
		apiRoutes.DELETE("/posts/:id", h.DeletePost)
		apiRoutes.POST("/posts/:id/like", h.LikePost)

		apiRoutes.GET("/ws", h.AttachWebsocket)
	}
}

package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutesMountsAPISurface(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, nil, nil, nil, nil, nil)
	r := gin.New()
	h.RegisterRoutes(r)

	mounted := make(map[string]bool)
	for _, route := range r.Routes() {
		mounted[route.Method+" "+route.Path] = true
	}

	want := []string{
		"POST /auth/register",
		"POST /auth/login",

		"GET /api/user/me",
		"PUT /api/user/me",
		"GET /api/veterinarians",
		"GET /api/veterinarians/:id/reviews",

		"POST /api/reviews",
		"PUT /api/reviews/:id",
		"DELETE /api/reviews/:id",

		"POST /api/animals",
		"GET /api/animals",
		"PUT /api/animals/:id",
		"DELETE /api/animals/:id",

		"POST /api/appointments",
		"GET /api/appointments/active",
		"GET /api/appointments/:id",
		"PUT /api/appointments/:id",
		"DELETE /api/appointments/:id",
		"PATCH /api/appointments/:id/accept",
		"PATCH /api/appointments/:id/reject",

		"POST /api/conversations",
		"GET /api/conversations",
		"GET /api/conversations/:id/messages",
		"POST /api/conversations/:id/messages",
		"POST /api/conversations/:id/read",
		"GET /api/conversations/:id/unread",

		"GET /api/notifications",
		"PATCH /api/notifications/:id/read",

		"POST /api/posts",
		"GET /api/posts",
		"PUT /api/posts/:id",
		"DELETE /api/posts/:id",
		"POST /api/posts/:id/like",

		"GET /api/ws",
	}
	for _, route := range want {
		assert.True(t, mounted[route], "missing route %s", route)
	}
}

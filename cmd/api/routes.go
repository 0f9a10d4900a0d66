package main

import (
	"school-platform/internal/httpapi"
	"school-platform/internal/identity"
	"school-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	handlers httpapi.Handlers
	school   httpapi.SchoolHandlers

	// requireToken verifies the bearer token and re-checks account status;
	// requireAllowed enforces the route permission table. Order matters:
	// the verifier must run first.
	requireToken   gin.HandlerFunc
	requireAllowed gin.HandlerFunc

	store identity.Repository
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "service": "school-platform"})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth lifecycle routes stay public; the permission table also lists
	// them as public prefixes so the two layers agree.
	users := r.Group("/api/users")
	{
		users.POST("/login", d.handlers.Login)
		users.POST("/register", d.handlers.Register)
		users.POST("/refresh-token", d.handlers.Refresh)
	}

	// protected API group: token verification, then role matching.
	api := r.Group("/api")
	api.Use(d.requireToken, d.requireAllowed)
	{
		api.GET("/users/me", d.handlers.Me)

		// STUDENTS routes; the permission table limits writes to admins and
		// reads under /api/students/* to admins and teachers.
		api.GET("/students", d.school.ListStudents)
		api.POST("/students", d.school.EnrollStudent)
		api.GET("/students/:id", d.school.GetStudent)
		api.PATCH("/students/:id", d.school.UpdateStudent)

		// Deletion keeps the extra admin gate on top of the table: the role
		// is re-read from the store, not trusted from the token.
		api.DELETE("/students/:id", rbac.RequireAdmin(d.store), d.school.DeleteStudent)

		// REPRESENTATIVES routes
		api.GET("/representatives", d.school.SearchRepresentatives)

		// ATTENDANCE routes
		api.POST("/attendance", d.school.SubmitAttendance)
		api.GET("/attendance", d.school.ListAttendance)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/hackfest/internal/app/controllers"
	"github.com/yigit/hackfest/internal/app/models/dto/enums"
	"github.com/yigit/hackfest/internal/middleware"
)

// SetupRouter configures all application routes. adminController and
// authMiddleware may be nil, in which case organizer routes are not mounted.
func SetupRouter(
	router *gin.Engine,
	registrationController *controllers.RegistrationController,
	adminController *controllers.AdminController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public registration routes ---
	registration := v1.Group("/registration")
	{
		registration.GET("/schema", registrationController.GetSchema)

		forms := registration.Group("/forms")
		{
			forms.POST("", registrationController.OpenForm)
			forms.GET("/:id", registrationController.GetForm)
			forms.PATCH("/:id/fields", registrationController.UpdateField)
			forms.POST("/:id/validate", registrationController.ValidateForm)
			forms.POST("/:id/submit", registrationController.SubmitForm)
			forms.POST("/:id/reset", registrationController.ResetForm)
			forms.DELETE("/:id", registrationController.CloseForm)
		}
	}

	v1.POST("/registrations", registrationController.Register)

	if adminController == nil || authMiddleware == nil {
		return
	}

	// --- Organizer routes ---
	admin := v1.Group("/admin")
	{
		admin.POST("/login", adminController.Login)

		protected := admin.Group("")
		protected.Use(authMiddleware.JWTAuth())
		protected.Use(authMiddleware.RoleRequired(string(enums.RoleOrganizer)))
		{
			protected.GET("/registrations", adminController.ListRegistrations)
			protected.GET("/registrations/:id", adminController.GetRegistration)
		}
	}
}

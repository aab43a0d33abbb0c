package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/admission/internal/app/controllers"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Admission *controllers.AdmissionController
	Admin     *controllers.AdminController
	Payment   *controllers.PaymentController
	Health    *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", c.Health.Ping)

	api := router.Group("/api")
	api.GET("/health", c.Health.Health)

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
	}

	// --- Public dashboard aggregations ---
	api.GET("/admin/count-by-status", c.Admin.CountByStatus)
	api.GET("/admin/count-by-course", c.Admin.CountByCourse)
	api.GET("/status/dashboard-stats", c.Admin.DashboardStats)

	// --- Authenticated Routes Group ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/check-session", c.Auth.CheckSession)
		authenticated.GET("/auth/profile", c.Auth.GetProfile)
		authenticated.PUT("/auth/profile", c.Auth.UpdateProfile)

		authenticated.GET("/payment/me", c.Payment.GetMyPayment)
		authenticated.POST("/payment/student/payment", c.Payment.RecordPayment)
	}

	// Applicant form, students only
	admission := authenticated.Group("/admission")
	admission.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
	{
		admission.POST("/course", c.Admission.SubmitCourse)
		admission.POST("/personal-details", c.Admission.SubmitPersonalDetails)
		admission.POST("/academic-details", c.Admission.SubmitAcademicDetails)
		admission.POST("/form/progress", c.Admission.GetFormProgress)
		admission.GET("/me", c.Admission.GetMyApplication)
	}

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
	{
		admin.GET("/applications", c.Admin.ListApplications)
		admin.GET("/applications/:id", c.Admin.GetApplication)
		admin.PUT("/applications/:id", c.Admin.ChangeStatus)
		admin.GET("/applications/:id/documents/view-proxy", c.Admin.ViewDocument)
	}

	paymentAdmin := authenticated.Group("/payment/admin")
	paymentAdmin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
	{
		paymentAdmin.POST("/payment/approve/:userId", c.Payment.ApprovePayment)
		paymentAdmin.GET("/payment/:userId", c.Payment.GetUserPayment)
		paymentAdmin.GET("/payments", c.Payment.ListPayments)
	}
}

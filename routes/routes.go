package routes

import (
	"github.com/gin-gonic/gin"

	"rentdesk/controllers"
	"rentdesk/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine) {
	// Public routes (no authentication required)
	public := r.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/register", controllers.Register)
			auth.POST("/forgot-password", controllers.ForgotPassword)
			auth.POST("/reset-password", controllers.ResetPassword)
		}
	}

	// Protected routes (authentication required)
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/refresh", controllers.RefreshToken)

		protected.GET("/profile", controllers.GetUserProfile)
		protected.PUT("/profile", controllers.UpdateUserProfile)
		protected.POST("/profile/change-password", controllers.ChangePassword)

		protected.GET("/notifications", controllers.GetNotifications)
		protected.POST("/notifications/:id/read", controllers.MarkNotificationRead)
		protected.POST("/notifications/read-all", controllers.MarkAllNotificationsRead)

		// Units
		units := protected.Group("/units")
		{
			units.POST("", middleware.ManagerAuthMiddleware(), controllers.CreateUnit)
			units.GET("", middleware.StaffAuthMiddleware(), controllers.GetUnits)
			units.GET("/:id", middleware.StaffAuthMiddleware(), controllers.GetUnitByID)
			units.PUT("/:id", middleware.ManagerAuthMiddleware(), controllers.UpdateUnit)
			units.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteUnit)
		}

		// Properties
		properties := protected.Group("/properties")
		{
			properties.POST("", middleware.ManagerAuthMiddleware(), controllers.CreateProperty)
			properties.GET("", middleware.StaffAuthMiddleware(), controllers.GetProperties)
			properties.GET("/:id", middleware.StaffAuthMiddleware(), controllers.GetPropertyByID)
			properties.PUT("/:id", middleware.ManagerAuthMiddleware(), controllers.UpdateProperty)
			properties.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteProperty)
		}

		// Tenants
		tenants := protected.Group("/tenants")
		{
			tenants.POST("", middleware.StaffAuthMiddleware(), controllers.CreateTenant)
			tenants.GET("", middleware.StaffAuthMiddleware(), controllers.GetTenants)
			tenants.GET("/:id", middleware.StaffAuthMiddleware(), controllers.GetTenantByID)
			tenants.PUT("/:id", middleware.StaffAuthMiddleware(), controllers.UpdateTenant)
			tenants.POST("/:id/approve", middleware.ManagerAuthMiddleware(), controllers.ApproveTenant)
			tenants.POST("/:id/reject", middleware.ManagerAuthMiddleware(), controllers.RejectTenant)
			tenants.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteTenant)
		}

		// Contracts
		contracts := protected.Group("/contracts")
		{
			contracts.POST("", middleware.ManagerAuthMiddleware(), controllers.CreateContract)
			contracts.GET("", middleware.StaffAuthMiddleware(), controllers.GetContracts)
			contracts.GET("/:id", middleware.StaffAuthMiddleware(), controllers.GetContractByID)
			contracts.PUT("/:id", middleware.ManagerAuthMiddleware(), controllers.UpdateContract)
			contracts.POST("/:id/activate", middleware.ManagerAuthMiddleware(), controllers.ActivateContract)
			contracts.POST("/:id/terminate", middleware.ManagerAuthMiddleware(), controllers.TerminateContract)
			contracts.POST("/expire-sweep", middleware.ManagerAuthMiddleware(), controllers.ExpireContractsSweep)
		}

		// Payments
		payments := protected.Group("/payments")
		{
			payments.POST("", middleware.ManagerAuthMiddleware(), controllers.CreatePayment)
			payments.GET("", controllers.GetPayments)
			payments.GET("/:id", controllers.GetPaymentByID)
			payments.POST("/:id/record", middleware.StaffAuthMiddleware(), controllers.RecordPayment)
			payments.POST("/:id/cancel", middleware.ManagerAuthMiddleware(), controllers.CancelPayment)
			payments.POST("/:id/refund", middleware.ManagerAuthMiddleware(), controllers.RefundPayment)
			payments.POST("/:id/checkout", middleware.TenantAuthMiddleware(), controllers.CheckoutPayment)
			payments.POST("/verify", middleware.TenantAuthMiddleware(), controllers.VerifyPayment)
		}

		// Maintenance requests
		maintenance := protected.Group("/maintenance")
		{
			maintenance.POST("", controllers.CreateMaintenanceRequest)
			maintenance.GET("", controllers.GetMaintenanceRequests)
			maintenance.GET("/:id", controllers.GetMaintenanceRequestByID)
			maintenance.PUT("/:id", middleware.StaffAuthMiddleware(), controllers.UpdateMaintenanceRequest)
			maintenance.DELETE("/:id", middleware.ManagerAuthMiddleware(), controllers.DeleteMaintenanceRequest)
		}

		// Reports
		reports := protected.Group("/reports")
		reports.Use(middleware.StaffAuthMiddleware())
		{
			reports.GET("/dashboard", controllers.GetDashboard)
			reports.GET("/revenue", controllers.GetRevenueReport)
			reports.GET("/overdue", controllers.GetOverduePayments)
		}

		// Super-admin console
		superadmin := protected.Group("/superadmin")
		superadmin.Use(middleware.SuperAdminAuthMiddleware())
		{
			superadmin.GET("/organizations", controllers.GetOrganizations)
			superadmin.PATCH("/organizations/:id/subscription", controllers.UpdateOrganizationSubscription)
			superadmin.POST("/plans", controllers.CreatePlan)
			superadmin.GET("/plans", controllers.GetPlans)
			superadmin.PUT("/plans/:id", controllers.UpdatePlan)
			superadmin.DELETE("/plans/:id", controllers.DeletePlan)
		}
	}
}

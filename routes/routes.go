package routes

import (
	"table-order-api/handlers"
	"table-order-api/middleware"
	"table-order-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Super admin (no tenant context) ────────────────────────────
	r.POST("/api/superadmin/login", handlers.SuperAdminLogin)

	superadmin := r.Group("/superadmin")
	superadmin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleSuperAdmin))
	{
		superadmin.GET("/restaurants", handlers.ListRestaurants)
		superadmin.POST("/restaurants", handlers.CreateRestaurant)
		superadmin.PUT("/restaurants/:id", handlers.UpdateRestaurant)
		superadmin.PUT("/restaurants/:id/block", handlers.BlockRestaurant)
		superadmin.DELETE("/restaurants/:id", handlers.DeleteRestaurant)
	}

	// ── Public tenant routes ───────────────────────────────────────
	tenant := r.Group("/:tenant")
	tenant.Use(middleware.TenantRequired())
	{
		tenant.GET("/menu", handlers.GetMenu)
		tenant.GET("/tables/:number/qr", handlers.GetTableQR)
		tenant.GET("/state-machine", handlers.GetStateMachineInfo)

		tenant.POST("/api/table-session", handlers.StartTableSession)
		tenant.POST("/api/staff/login", handlers.StaffLogin)
		tenant.POST("/api/admin/login", handlers.AdminLogin)
	}

	// ── Customer ordering path (table session cookie) ──────────────
	customer := r.Group("/:tenant/api")
	customer.Use(middleware.TenantRequired(), middleware.TableSessionRequired())
	{
		customer.POST("/checkout", handlers.Checkout)
		customer.GET("/table-status", handlers.GetTableStatus)
		customer.GET("/table-status/stream", handlers.StreamTableStatus)
	}

	// ── Kitchen routes (staff or admin token) ──────────────────────
	kitchen := r.Group("/:tenant/kitchen")
	kitchen.Use(
		middleware.TenantRequired(),
		middleware.AuthRequired(),
		middleware.RoleRequired(models.RoleKitchenStaff, models.RoleAdmin),
		middleware.TenantMatchRequired(),
	)
	{
		kitchen.GET("/orders", handlers.GetKitchenOrders)
		kitchen.GET("/orders/stream", handlers.StreamKitchenOrders)
		kitchen.PUT("/orders/:id/status", handlers.UpdateOrderStatus)
		kitchen.DELETE("/orders/:id", handlers.RemoveOrder)
		kitchen.PUT("/tables/:number/occupied", handlers.ToggleTableOccupied)
	}

	// ── Admin routes (admin token, tenant-bound) ───────────────────
	admin := r.Group("/:tenant/admin")
	admin.Use(
		middleware.TenantRequired(),
		middleware.AuthRequired(),
		middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin),
		middleware.TenantMatchRequired(),
	)
	{
		admin.GET("/foods", handlers.GetFoods)
		admin.POST("/foods", handlers.CreateFood)
		admin.PUT("/foods/:id", handlers.UpdateFood)
		admin.DELETE("/foods/:id", handlers.DeleteFood)

		admin.GET("/orders", handlers.AdminGetOrders)
		admin.GET("/orders/stream", handlers.StreamAdminOrders)
		admin.POST("/orders", handlers.AdminCreateOrder)
		admin.PUT("/orders/:id", handlers.AdminUpdateOrder)
		admin.DELETE("/orders/:id", handlers.AdminDeleteOrder)

		admin.GET("/staff", handlers.GetStaff)
		admin.POST("/add-staff", handlers.AddStaff)
		admin.PUT("/staff/:id", handlers.UpdateStaff)
		admin.DELETE("/staff/:id", handlers.DeleteStaff)

		admin.GET("/tables", handlers.GetTables)
		admin.POST("/tables", handlers.CreateTable)
		admin.PUT("/tables/:id", handlers.UpdateTable)
		admin.DELETE("/tables/:id", handlers.DeleteTable)

		admin.GET("/stats", handlers.GetStats)
	}
}

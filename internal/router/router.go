package router

import (
	"time"

	"renthub/internal/database"
	"renthub/internal/handlers"
	"renthub/internal/middleware"
	"renthub/internal/notify"
	"renthub/internal/saga"
	"renthub/internal/services"
	"renthub/pkg/config"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(hub *notify.Hub) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router, hub)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, hub *notify.Hub) {

	cfg := config.GetConfig()
	db := database.GetDB()
	runner := saga.NewRunner(saga.NewRedisStepLog(database.GetRedisClient(), cfg.Redis.Prefix))
	strict := cfg.Integrity.Strict

	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db, strict)
	applicationService := services.NewApplicationService(db, runner)
	leaseService := services.NewLeaseService(db, runner, strict)
	paymentService := services.NewPaymentService(db, nil)
	maintenanceService := services.NewMaintenanceService(db)

	auth := middleware.NewAuthMiddleware(userService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(userService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register) // 用户注册
			authGroup.POST("/login", authHandler.Login)       // 用户登录

			// 🔒 获取当前用户信息
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 用户查询路由
		users := api.Group("/users")
		{
			users.GET("/:id", auth.RequireLogin(), authHandler.GetUser)
		}

		// 房源路由（读公开，写需要权限）
		propertyHandler := handlers.NewPropertyHandler(propertyService)
		applicationHandler := handlers.NewApplicationHandler(applicationService)
		leaseHandler := handlers.NewLeaseHandler(leaseService)
		maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
		properties := api.Group("/properties")
		{
			// 🔓 公开查询
			properties.GET("", propertyHandler.List)
			properties.GET("/search", propertyHandler.Search)

			// 🔒 角色范围查询（放在动态路由之前）
			properties.GET("/mine", auth.RequireLogin(), auth.RequirePermission(middleware.PermPropertyMine), propertyHandler.Mine)
			properties.GET("/managed", auth.RequireLogin(), auth.RequirePermission(middleware.PermPropertyManaged), propertyHandler.Managed)

			properties.GET("/:id", propertyHandler.Get)

			// 🔒 写操作（路由级角色关卡 + 服务层归属校验）
			properties.POST("", auth.RequireLogin(), auth.RequirePermission(middleware.PermPropertyCreate), propertyHandler.Create)
			properties.PUT("/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermPropertyUpdate), propertyHandler.Update)
			properties.DELETE("/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermPropertyDelete), propertyHandler.Delete)
			properties.POST("/:id/assign-manager", auth.RequireLogin(), auth.RequirePermission(middleware.PermPropertyAssign), propertyHandler.AssignManager)

			// 🔒 房源关联资源
			properties.GET("/:id/applications", auth.RequireLogin(), auth.RequirePermission(middleware.PermApplicationReview), applicationHandler.ListByProperty)
			properties.GET("/:id/leases", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseView), leaseHandler.ListByProperty)
			properties.GET("/:id/maintenance", auth.RequireLogin(), auth.RequirePermission(middleware.PermMaintenanceView), maintenanceHandler.ListByProperty)
		}

		// 租房申请路由
		applications := api.Group("/applications")
		{
			applications.POST("", auth.RequireLogin(), auth.RequirePermission(middleware.PermApplicationSubmit), applicationHandler.Submit)
			applications.GET("/mine", auth.RequireLogin(), auth.RequirePermission(middleware.PermApplicationList), applicationHandler.Mine)
			applications.GET("/tenant/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermApplicationList), applicationHandler.ByTenant)
			applications.PUT("/:id/review", auth.RequireLogin(), auth.RequirePermission(middleware.PermApplicationReview), applicationHandler.Review)
			applications.POST("/:id/cancel", auth.RequireLogin(), auth.RequirePermission(middleware.PermApplicationCancel), applicationHandler.Cancel)
		}

		// 租约路由
		paymentHandler := handlers.NewPaymentHandler(paymentService)
		leases := api.Group("/leases")
		{
			leases.POST("", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseCreate), leaseHandler.Create)
			leases.GET("/mine", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseView), leaseHandler.Mine)
			leases.GET("/tenant/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseView), leaseHandler.ByTenant)
			leases.GET("/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseView), leaseHandler.Get)
			leases.PUT("/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseUpdate), leaseHandler.Update)

			// 🔒 退租
			leases.POST("/:id/terminate", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseTerminate), leaseHandler.Terminate)
			leases.POST("/:id/approve-termination", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseApproveTerminate), leaseHandler.ApproveTermination)

			// 🔒 续租
			leases.POST("/:id/renewal-offer", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseOfferRenewal), leaseHandler.OfferRenewal)
			leases.POST("/:id/renewal-response", auth.RequireLogin(), auth.RequirePermission(middleware.PermLeaseRespondRenewal), leaseHandler.RespondToRenewal)

			// 🔒 租约下的支付记录
			leases.GET("/:id/payments", auth.RequireLogin(), auth.RequirePermission(middleware.PermPaymentView), paymentHandler.ListByLease)
		}

		// 支付路由
		payments := api.Group("/payments")
		{
			payments.POST("", auth.RequireLogin(), auth.RequirePermission(middleware.PermPaymentCreate), paymentHandler.Create)
			payments.GET("", auth.RequireLogin(), auth.RequirePermission(middleware.PermPaymentView), paymentHandler.List)
			payments.GET("/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermPaymentView), paymentHandler.Get)
			payments.POST("/:id/process", auth.RequireLogin(), auth.RequirePermission(middleware.PermPaymentProcess), paymentHandler.Process)
		}

		// 维修工单路由
		maintenance := api.Group("/maintenance")
		{
			maintenance.POST("", auth.RequireLogin(), auth.RequirePermission(middleware.PermMaintenanceCreate), maintenanceHandler.Create)
			maintenance.GET("", auth.RequireLogin(), auth.RequirePermission(middleware.PermMaintenanceView), maintenanceHandler.List)
			maintenance.GET("/:id", auth.RequireLogin(), auth.RequirePermission(middleware.PermMaintenanceView), maintenanceHandler.Get)
			maintenance.PUT("/:id/status", auth.RequireLogin(), auth.RequirePermission(middleware.PermMaintenanceUpdate), maintenanceHandler.UpdateStatus)
			maintenance.POST("/:id/notes", auth.RequireLogin(), auth.RequirePermission(middleware.PermMaintenanceNote), maintenanceHandler.AddNote)
			maintenance.POST("/:id/assign", auth.RequireLogin(), auth.RequirePermission(middleware.PermMaintenanceAssign), maintenanceHandler.Assign)
		}

		// WebSocket路由（通知推送，token走查询参数）
		wsHandler := handlers.NewWebSocketHandler(hub)
		ws := api.Group("/ws")
		{
			ws.GET("/notifications", wsHandler.Notifications)
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "RentHub",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}

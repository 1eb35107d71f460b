package api

import (
	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/api/cron"
	v1 "github.com/kontorapp/kontor/internal/api/v1"
	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/rest/middleware"
	"github.com/kontorapp/kontor/internal/types"
)

type Handlers struct {
	Health        *v1.HealthHandler
	Employee      *v1.EmployeeHandler
	Subscription  *v1.SubscriptionHandler
	Task          *v1.TaskHandler
	RecurringTask *v1.RecurringTaskHandler
	Scheduler     *v1.SchedulerHandler

	CronLicensing *cron.LicensingHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1", middleware.TenantMiddleware)
	registerV1Routes(v1Group, handlers)

	admin := router.Group("/admin", middleware.AdminKeyMiddleware(cfg, log))
	{
		scheduler := admin.Group("/scheduler")
		scheduler.GET("/status", handlers.Scheduler.Status)
		scheduler.POST("/start", handlers.Scheduler.Start)
		scheduler.POST("/stop", handlers.Scheduler.Stop)
		scheduler.POST("/trigger", handlers.Scheduler.Trigger)
	}

	cronGroup := router.Group("/cron", middleware.AdminKeyMiddleware(cfg, log))
	{
		licensing := cronGroup.Group("/licensing")
		licensing.POST("/rollover", handlers.CronLicensing.RollOver)
	}

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	employees := router.Group("/employees")
	{
		employees.POST("", handlers.Employee.CreateEmployee)
		employees.GET("/:id", handlers.Employee.GetEmployee)
		employees.PUT("/:id/license", handlers.Employee.ToggleLicense)
	}

	router.GET("/subscription", handlers.Subscription.GetSummary)
	router.GET("/seats", handlers.Subscription.GetSeats)

	tasks := router.Group("/tasks")
	{
		tasks.POST("", handlers.Task.CreateTask)
		tasks.GET("", handlers.Task.ListTasks)
		tasks.GET("/:id", handlers.Task.GetTask)
		tasks.PUT("/:id/status", handlers.Task.UpdateTaskStatus)
		tasks.POST("/:id/complete", handlers.Task.CompleteTask)
	}

	recurring := router.Group("/recurring-tasks")
	{
		recurring.POST("", handlers.RecurringTask.CreateRecurringTask)
		recurring.GET("", handlers.RecurringTask.ListRecurringTasks)
		recurring.GET("/:id", handlers.RecurringTask.GetRecurringTask)
		recurring.PUT("/:id", handlers.RecurringTask.UpdateRecurringTask)
	}
}

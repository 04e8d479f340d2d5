package main

import (
	"log"
	"time"

	"salon_workflow/config"
	"salon_workflow/handler"
	"salon_workflow/middleware"
	"salon_workflow/model"
	"salon_workflow/service"
	"salon_workflow/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	// Absence dates default to "today" in the salon's timezone.
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		time.Local = loc
	}
}

func main() {
	cfg := config.Load()

	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer utils.CloseDB()

	if err := utils.GetDB().AutoMigrate(
		&model.MessageTemplate{},
		&model.SalonSettings{},
		&model.Staff{},
		&model.WorkflowEvent{},
		&model.WorkflowRecord{},
	); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	if err := utils.InitRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer utils.CloseRedis()

	middleware.InitAuth(cfg.JWTSecret)

	// services
	settingsSvc := service.NewSettingsService(utils.GetDB())
	if err := settingsSvc.InitDefaultSettings(); err != nil {
		log.Printf("Warning: Failed to init default settings: %v", err)
	}

	templateSvc := service.NewTemplateService(utils.GetDB())
	if err := templateSvc.InitDefaultTemplates(); err != nil {
		log.Printf("Warning: Failed to init default message templates: %v", err)
	}

	staffSvc := service.NewStaffService(utils.GetDB())
	eventSvc := service.NewEventService(utils.GetDB())

	classifierSvc := service.NewClassifierService(service.ClassifierOptions{
		Year:        cfg.ReportYear,
		ShiftWindow: settingsSvc.GetSettingDefault("default_shift_window", "10:00-18:00"),
	})

	channels := []service.Channel{
		service.NewEmailChannel(cfg),
		service.NewChatChannel(cfg),
		service.NewRecordChannel(utils.GetDB(), cfg.Record.Enabled),
	}
	dispatchSvc := service.NewDispatchService(time.Duration(cfg.DispatchTimeoutSeconds) * time.Second)

	workflowSvc := service.NewWorkflowService(
		classifierSvc,
		templateSvc,
		staffSvc,
		settingsSvc,
		eventSvc,
		dispatchSvc,
		channels,
	)
	workflowSvc.SetDeduper(service.NewDedupService(utils.GetRedis(), time.Duration(cfg.DedupTTLSeconds)*time.Second))

	// admin live feed
	hub := handler.NewHub()
	workflowSvc.SetEventNotifier(hub)

	// handlers
	webhookHandler := handler.NewWebhookHandler(workflowSvc, cfg.WebhookChannelSecret)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	staffHandler := handler.NewStaffHandler(staffSvc)
	eventHandler := handler.NewEventHandler(eventSvc)

	r := gin.Default()

	r.Use(middleware.ErrorHandlerMiddleware())

	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})

	// inbound chat-platform webhook (HMAC signature, no JWT)
	r.POST("/webhook/staff-bot", webhookHandler.HandleStaffWebhook)

	// admin console live feed (token via query)
	r.GET("/ws", handler.HandleWebSocket(hub))

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(handler.AdminAuthMiddleware())
	{
		// message templates (fixed set: list/get/update only)
		admin.GET("/message-templates", templateHandler.ListTemplates)
		admin.GET("/message-templates/:template_id", templateHandler.GetTemplate)
		admin.POST("/message-templates/init-defaults", templateHandler.InitDefaultTemplates)
		admin.POST("/message-templates/:template_id", templateHandler.UpdateTemplate)

		// salon settings
		admin.GET("/settings", settingsHandler.GetSettings)
		admin.POST("/settings/reload", settingsHandler.ReloadSettings)
		admin.POST("/settings/:key", settingsHandler.UpdateSetting)

		// staff directory
		admin.GET("/staff", staffHandler.ListStaff)
		admin.POST("/staff", staffHandler.CreateStaff)
		admin.POST("/staff/:id", staffHandler.UpdateStaff)

		// workflow audit trail
		admin.GET("/events", eventHandler.ListEvents)
		admin.GET("/events/stats", eventHandler.GetStats)
		admin.GET("/events/:id", eventHandler.GetEvent)

		// channel wiring check
		admin.POST("/workflow/test", webhookHandler.TestWorkflow)
	}

	log.Printf("salon_workflow service starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

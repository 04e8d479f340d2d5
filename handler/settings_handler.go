package handler

import (
	"salon_workflow/middleware"
	"salon_workflow/service"
	"salon_workflow/utils"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsSvc *service.SettingsService
}

func NewSettingsHandler(settingsSvc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsSvc: settingsSvc,
	}
}

// GetSettings returns all salon settings.
// GET /api/admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsSvc.GetAllSettings()
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"settings": settings,
	})
}

// UpdateSetting updates one salon setting.
// POST /api/admin/settings/:key
func (h *SettingsHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		Value string `json:"value" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	if err := h.settingsSvc.UpdateSetting(key, req.Value); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "setting updated successfully",
		"key":     key,
		"value":   req.Value,
	})
}

// ReloadSettings reloads the settings cache from the database.
// POST /api/admin/settings/reload
func (h *SettingsHandler) ReloadSettings(c *gin.Context) {
	if err := h.settingsSvc.LoadSettings(); err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "settings reloaded successfully",
	})
}

// AdminAuthMiddleware guards admin routes. All JWT-authenticated users are
// currently treated as admins.
// TODO: check a role claim once the admin console issues role-scoped tokens.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := middleware.GetUserID(c); !exists {
			utils.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}

package handler

import (
	"salon_workflow/service"
	"salon_workflow/utils"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateSvc *service.TemplateService
}

func NewTemplateHandler(templateSvc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateSvc: templateSvc,
	}
}

// ListTemplates returns the built-in template set in display order.
// GET /api/admin/message-templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateSvc.ListTemplates()
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"templates": templates})
}

// GetTemplate returns one template.
// GET /api/admin/message-templates/:template_id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	template, err := h.templateSvc.GetTemplate(c.Param("template_id"))
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"template": template})
}

// UpdateTemplate replaces a template body; the variable list is recomputed
// from the new body. The template set is fixed, so there is no create or
// delete endpoint.
// POST /api/admin/message-templates/:template_id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	template, err := h.templateSvc.UpdateTemplateBody(c.Param("template_id"), req.Body)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"template": template})
}

// InitDefaultTemplates reseeds missing built-in templates.
// POST /api/admin/message-templates/init-defaults
func (h *TemplateHandler) InitDefaultTemplates(c *gin.Context) {
	if err := h.templateSvc.InitDefaultTemplates(); err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Default templates initialized successfully", nil)
}

package handler

import (
	"salon_workflow/model"
	"salon_workflow/service"
	"salon_workflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StaffHandler struct {
	staffSvc *service.StaffService
}

func NewStaffHandler(staffSvc *service.StaffService) *StaffHandler {
	return &StaffHandler{
		staffSvc: staffSvc,
	}
}

// ListStaff returns every staff member.
// GET /api/admin/staff
func (h *StaffHandler) ListStaff(c *gin.Context) {
	staff, err := h.staffSvc.ListStaff()
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"staff": staff})
}

// CreateStaff provisions a staff member. A staff member must exist here
// before their chat messages can be processed; unknown senders fail the
// workflow event.
// POST /api/admin/staff
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req model.Staff
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}
	if req.ChatUserID == "" || req.Name == "" {
		utils.BadRequest(c, "chat_user_id and name are required")
		return
	}
	req.IsActive = true

	staff, err := h.staffSvc.CreateStaff(&req)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"staff": staff})
}

// UpdateStaff applies partial updates to a staff member.
// POST /api/admin/staff/:id
func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid staff ID")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	if err := h.staffSvc.UpdateStaff(id, updates); err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "Staff updated successfully", nil)
}

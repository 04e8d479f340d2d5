package handler

import (
	"strconv"

	"salon_workflow/service"
	"salon_workflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventHandler struct {
	eventSvc *service.EventService
}

func NewEventHandler(eventSvc *service.EventService) *EventHandler {
	return &EventHandler{
		eventSvc: eventSvc,
	}
}

// ListEvents returns the workflow audit trail, newest first. Unknown-intent
// events show up here too: that is where operators review unclassified
// messages.
// GET /api/admin/events?intent=&status=&limit=&offset=
func (h *EventHandler) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	events, err := h.eventSvc.ListEvents(c.Query("intent"), c.Query("status"), limit, offset)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"events": events})
}

// GetEvent returns one event with its dispatch results.
// GET /api/admin/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid event ID")
		return
	}

	event, err := h.eventSvc.GetEvent(id)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"event": event})
}

// GetStats returns event counts per intent and terminal state.
// GET /api/admin/events/stats
func (h *EventHandler) GetStats(c *gin.Context) {
	stats, err := h.eventSvc.GetStats()
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

package slots

import (
	"net/http"

	"playpark/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetDaySlots handles POST /api/v1/slots/day
func (c *Controller) GetDaySlots(ctx *gin.Context) {
	var req DaySlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "selected_date is required", nil, err.Error())
		return
	}

	daySlots, err := c.service.GetOrCreateSlots(ctx.Request.Context(), req.SelectedDate)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Slots retrieved successfully",
		ToDaySlotsResponse(req.SelectedDate, daySlots))
}

// BlockSlot handles POST /api/v1/slots/:id/block
func (c *Controller) BlockSlot(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid slot ID", nil, nil)
		return
	}

	if err := c.service.BlockSlot(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Slot blocked successfully", nil)
}

// UnblockSlot handles POST /api/v1/slots/:id/unblock
func (c *Controller) UnblockSlot(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid slot ID", nil, nil)
		return
	}

	if err := c.service.UnblockSlot(ctx.Request.Context(), id); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Slot unblocked successfully", nil)
}

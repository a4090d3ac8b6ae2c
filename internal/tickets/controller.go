package tickets

import (
	"net/http"

	"playpark/internal/shared/apperr"
	"playpark/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ValidateTicket runs the admission decision without admitting the holder.
// POST /api/v1/tickets/validate
func (ctrl *Controller) ValidateTicket(c *gin.Context) {
	var req ValidateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("INVALID_REQUEST", err.Error()))
		return
	}
	if req.Identifier() == "" {
		response.Error(c, apperr.Validation("INVALID_REQUEST", "ticket_id or ticket_number is required"))
		return
	}

	result, err := ctrl.service.Validate(c.Request.Context(), req.Identifier())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Ticket validated", result)
}

// CheckIn admits the ticket holder when the ticket is valid.
// POST /api/v1/tickets/:idOrNumber/check-in
func (ctrl *Controller) CheckIn(c *gin.Context) {
	result, err := ctrl.service.CheckIn(c.Request.Context(), c.Param("idOrNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Check-in processed", result)
}

// CheckOut records the holder leaving the venue.
// POST /api/v1/tickets/:idOrNumber/check-out
func (ctrl *Controller) CheckOut(c *gin.Context) {
	ticket, err := ctrl.service.CheckOut(c.Request.Context(), c.Param("idOrNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Check-out processed", ticket)
}

// GetTicket returns a ticket by id or number.
// GET /api/v1/tickets/:idOrNumber
func (ctrl *Controller) GetTicket(c *gin.Context) {
	ticket, err := ctrl.service.GetTicket(c.Request.Context(), c.Param("idOrNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Ticket retrieved", ticket)
}

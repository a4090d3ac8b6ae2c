package payments

import (
	"crypto/subtle"
	"net/http"

	"playpark/internal/shared/apperr"
	"playpark/internal/shared/config"
	"playpark/internal/shared/utils/response"
	"playpark/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
	cfg     config.PaymentConfig
	logger  *logger.Logger
}

func NewController(service Service, cfg config.PaymentConfig, log *logger.Logger) *Controller {
	return &Controller{service: service, cfg: cfg, logger: log}
}

// InitiatePayment creates a hosted checkout session for a booking.
// POST /api/v1/payments/initiate
func (ctrl *Controller) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := ctrl.service.InitiatePayment(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Payment initiated", result)
}

// VerifyPayment pulls the provider for an invoice and reconciles the result.
// POST /api/v1/payments/verify
func (ctrl *Controller) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := ctrl.service.VerifyPayment(c.Request.Context(), req.InvoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payment verified", result)
}

// HandleWebhook ingests provider push notifications. The provider retries on
// any non-2xx, so deliveries no retry can fix (malformed bodies, unknown
// invoices) are acknowledged with 200 while transient storage failures return
// 500 to request a retry.
// POST /api/v1/payments/webhook
func (ctrl *Controller) HandleWebhook(c *gin.Context) {
	if !ctrl.authenticWebhook(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid api key"})
		return
	}

	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Retrying will not make a malformed body parse
		ctrl.logger.LogWebhookAnomaly(c.Request.Context(), "", "malformed webhook body: "+err.Error())
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	invoiceID := payload.ResolveInvoiceID()
	if invoiceID == "" {
		ctrl.logger.LogWebhookAnomaly(c.Request.Context(), "", "webhook without invoice_id")
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	_, err := ctrl.service.Reconcile(c.Request.Context(), invoiceID, payload.Status, TerminalFields{
		PaymentMethod: payload.PaymentMethod,
		TransactionID: payload.TransactionID,
		Fee:           parseFee(payload.Fee),
	}, "webhook")
	if err != nil {
		if app, ok := apperr.AsError(err); ok && app.Kind == apperr.KindNotFound {
			// Retrying will not make an unknown invoice appear
			ctrl.logger.LogWebhookAnomaly(c.Request.Context(), invoiceID, "webhook for unknown invoice")
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListForBooking returns every payment attempt recorded for a booking.
// GET /api/v1/payments/booking/:bookingId
func (ctrl *Controller) ListForBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.Error(c, apperr.Validation("INVALID_BOOKING_ID", "booking id must be a valid UUID"))
		return
	}

	rows, err := ctrl.service.GetPaymentsForBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Payments retrieved", rows)
}

func (ctrl *Controller) authenticWebhook(c *gin.Context) bool {
	provided := c.GetHeader(apiKeyHeader)
	if provided == "" || ctrl.cfg.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(ctrl.cfg.APIKey)) == 1
}

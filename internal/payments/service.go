package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"playpark/internal/bookings"
	"playpark/internal/shared/apperr"
	"playpark/internal/shared/config"
	"playpark/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStore is the slice of the bookings service this package needs.
// Declared here to avoid a package cycle.
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
}

// TicketIssuer creates the admission ticket once a payment completes.
type TicketIssuer interface {
	IssueForBooking(ctx context.Context, bookingID uuid.UUID) (string, error)
}

// Dispatcher sends best-effort SMS notifications.
type Dispatcher interface {
	EnqueueSMS(ctx context.Context, phone, message string) error
}

type Service interface {
	InitiatePayment(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error)
	VerifyPayment(ctx context.Context, invoiceID string) (*VerifyPaymentResponse, error)

	// Reconcile is the single path that moves a payment out of pending; both
	// the webhook handler and VerifyPayment funnel through it. Calling it on
	// an already terminal payment is a no-op.
	Reconcile(ctx context.Context, invoiceID, reportedStatus string, fields TerminalFields, source string) (*Payment, error)

	GetPaymentsForBooking(ctx context.Context, bookingID uuid.UUID) ([]PaymentResponse, error)
}

type service struct {
	repo         Repository
	gateway      Gateway
	bookingStore BookingStore
	ticketIssuer TicketIssuer
	dispatcher   Dispatcher
	cfg          config.PaymentConfig
	logger       *logger.Logger
}

func NewService(repo Repository, gateway Gateway, bookingStore BookingStore, ticketIssuer TicketIssuer, dispatcher Dispatcher, cfg config.PaymentConfig, log *logger.Logger) Service {
	return &service{
		repo:         repo,
		gateway:      gateway,
		bookingStore: bookingStore,
		ticketIssuer: ticketIssuer,
		dispatcher:   dispatcher,
		cfg:          cfg,
		logger:       log,
	}
}

func (s *service) InitiatePayment(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperr.Validation("INVALID_BOOKING_ID", "booking_id must be a valid UUID")
	}

	booking, err := s.bookingStore.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("BOOKING_NOT_FOUND", "booking not found")
		}
		return nil, apperr.Storage("failed to load booking", err)
	}
	if booking.IsCancelled() {
		return nil, apperr.Conflict("BOOKING_CANCELLED", "cannot pay for a cancelled booking")
	}
	if booking.IsPaid() {
		return nil, apperr.Conflict("BOOKING_ALREADY_PAID", "booking is already paid")
	}

	invoiceID := generateInvoiceID()

	// Provider call happens before any row is written: a declined checkout
	// leaves no partial payment behind.
	charge, err := s.gateway.CreateCharge(ctx, CreateChargeRequest{
		FullName:    req.CustomerName,
		Email:       req.CustomerEmail,
		Amount:      fmt.Sprintf("%.2f", req.Amount),
		InvoiceID:   invoiceID,
		RedirectURL: req.RedirectURL,
		CancelURL:   req.CancelURL,
		WebhookURL:  s.cfg.WebhookURL,
		Metadata: map[string]string{
			"invoice_id": invoiceID,
			"booking_id": bookingID.String(),
		},
	})
	if err != nil {
		return nil, apperr.Upstream("PROVIDER_ERROR", "failed to initiate payment with provider", err)
	}

	payment := &Payment{
		BookingID: bookingID,
		InvoiceID: invoiceID,
		Amount:    req.Amount,
		Currency:  s.cfg.Currency,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, ErrDuplicateInvoice) {
			return nil, apperr.Conflict("DUPLICATE_INVOICE", "invoice already exists")
		}
		return nil, apperr.Storage("failed to record payment", err)
	}

	s.logger.LogPaymentInitiated(ctx, invoiceID, bookingID.String(), req.Amount)

	return &InitiatePaymentResponse{
		InvoiceID:  invoiceID,
		PaymentURL: charge.PaymentURL,
		Amount:     req.Amount,
		Currency:   payment.Currency,
		Status:     StatusPending,
	}, nil
}

func (s *service) Reconcile(ctx context.Context, invoiceID, reportedStatus string, fields TerminalFields, source string) (*Payment, error) {
	payment, err := s.repo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("PAYMENT_NOT_FOUND", "no payment for invoice")
		}
		return nil, apperr.Storage("failed to load payment", err)
	}

	if payment.IsTerminal() {
		s.logger.LogPaymentReconciled(ctx, invoiceID, string(payment.Status), source+":noop")
		return payment, nil
	}

	mapped, terminal := MapProviderStatus(reportedStatus)
	if !terminal {
		if !strings.EqualFold(reportedStatus, ProviderStatusPending) {
			s.logger.WarnWithContext(ctx, "unrecognized provider payment status", map[string]interface{}{
				"invoice_id": invoiceID,
				"status":     reportedStatus,
				"source":     source,
			})
		}
		return payment, nil
	}

	won, updated, err := s.repo.Finalize(ctx, invoiceID, mapped, fields)
	if err != nil {
		return nil, apperr.Storage("failed to finalize payment", err)
	}

	s.logger.LogPaymentReconciled(ctx, invoiceID, string(updated.Status), source)

	// Post-transition side effects run only in the caller that won the
	// pending -> terminal flip, so they fire exactly once per payment.
	if won && updated.Status == StatusCompleted {
		s.onPaymentCompleted(ctx, updated)
	}

	return updated, nil
}

func (s *service) onPaymentCompleted(ctx context.Context, payment *Payment) {
	ticketNumber, err := s.ticketIssuer.IssueForBooking(ctx, payment.BookingID)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "failed to issue ticket for completed payment", err, map[string]interface{}{
			"invoice_id": payment.InvoiceID,
			"booking_id": payment.BookingID.String(),
		})
	}

	booking, err := s.bookingStore.GetByID(ctx, payment.BookingID)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "failed to load booking for payment notification", err, map[string]interface{}{
			"invoice_id": payment.InvoiceID,
		})
		return
	}

	message := fmt.Sprintf("Payment of %.2f %s received. Your PlayPark ticket is confirmed.", payment.Amount, payment.Currency)
	if ticketNumber != "" {
		message = fmt.Sprintf("Payment of %.2f %s received. Your PlayPark ticket %s is confirmed.", payment.Amount, payment.Currency, ticketNumber)
	}
	if err := s.dispatcher.EnqueueSMS(ctx, booking.ParentPhone, message); err != nil {
		s.logger.ErrorWithContext(ctx, "failed to enqueue payment confirmation sms", err, map[string]interface{}{
			"invoice_id": payment.InvoiceID,
		})
	}
}

func (s *service) VerifyPayment(ctx context.Context, invoiceID string) (*VerifyPaymentResponse, error) {
	if _, err := s.repo.GetByInvoiceID(ctx, invoiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("PAYMENT_NOT_FOUND", "no payment for invoice")
		}
		return nil, apperr.Storage("failed to load payment", err)
	}

	provider, err := s.gateway.VerifyPayment(ctx, invoiceID)
	if err != nil {
		return nil, apperr.Upstream("PROVIDER_ERROR", "failed to verify payment with provider", err)
	}

	updated, err := s.Reconcile(ctx, invoiceID, provider.Status, TerminalFields{
		PaymentMethod: provider.PaymentMethod,
		TransactionID: provider.TransactionID,
		Fee:           parseFee(provider.Fee),
	}, "verify")
	if err != nil {
		return nil, err
	}

	return &VerifyPaymentResponse{
		Payment:      ToPaymentResponse(updated),
		Verification: *provider,
	}, nil
}

func (s *service) GetPaymentsForBooking(ctx context.Context, bookingID uuid.UUID) ([]PaymentResponse, error) {
	rows, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, apperr.Storage("failed to list payments", err)
	}
	responses := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, ToPaymentResponse(&rows[i]))
	}
	return responses, nil
}

// generateInvoiceID mints a provider-facing invoice reference, e.g.
// PP-1756400000-9F3A2B.
func generateInvoiceID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("PP-%d-%s", time.Now().Unix(), suffix)
}

func parseFee(raw string) float64 {
	if raw == "" {
		return 0
	}
	fee, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return fee
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/joshua-takyi/cinepass/internal/helpers"
	"github.com/joshua-takyi/cinepass/internal/mailer"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const bookingMetadataKey = "bookingId"

type PaymentService struct {
	bookingRepo   models.BookingRepo
	tickets       *TicketService
	mailer        mailer.Mailer
	stripe        *stripe.Client
	webhookSecret string
	logger        *slog.Logger
}

// NewPaymentService accepts a nil stripe client; intent creation then reports ErrPaymentsDisabled.
func NewPaymentService(bookingRepo models.BookingRepo, tickets *TicketService, m mailer.Mailer, sc *stripe.Client, webhookSecret string, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		bookingRepo:   bookingRepo,
		tickets:       tickets,
		mailer:        m,
		stripe:        sc,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

type PaymentIntentResult struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

func (ps *PaymentService) CreatePaymentIntent(ctx context.Context, bookingID string, caller *helpers.EnhancedClaims) (*PaymentIntentResult, error) {
	if ps.stripe == nil {
		return nil, ErrPaymentsDisabled
	}
	bookingID = helpers.TrimID(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: booking id is required", ErrInvalidArgument)
	}

	booking, err := ps.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if caller == nil || !booking.IsOwner(caller.UserID) {
		return nil, ErrForbidden
	}
	if booking.Status != models.BookingPending || booking.TotalAmount <= 0 {
		return nil, ErrBookingNotPayable
	}

	currency := strings.ToLower(booking.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(booking.TotalAmount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(bookingMetadataKey, booking.ID.Hex())
	if booking.Email != "" {
		params.ReceiptEmail = stripe.String(booking.Email)
	}

	pi, err := ps.stripe.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	ps.logger.Info("Payment intent created", "booking_id", booking.ID.Hex(), "payment_intent", pi.ID)

	return &PaymentIntentResult{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
	}, nil
}

// HandleWebhook verifies a Stripe event and applies it to the booking it references.
func (ps *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, ps.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	ps.logger.Info("Stripe event received", "type", event.Type, "id", event.ID)

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		return ps.confirmBooking(ctx, pi.Metadata[bookingMetadataKey], pi.ID)

	case stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		return ps.failBooking(ctx, pi.Metadata[bookingMetadataKey], pi.ID)

	case stripe.EventTypeChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
		}
		if ch.PaymentIntent == nil {
			return nil
		}
		if !ch.Refunded && ch.AmountRefunded < ch.Amount {
			return ps.markPartialRefund(ctx, ch.PaymentIntent.ID, ch.AmountRefunded)
		}
		return ps.cancelBooking(ctx, ch.PaymentIntent.ID)
	}
	return nil
}

func (ps *PaymentService) ignoreUnknownBooking(err error, ref string) error {
	if errors.Is(err, models.ErrBookingNotFound) {
		ps.logger.Warn("Stripe event references unknown booking", "reference", ref)
		return nil
	}
	return err
}

func (ps *PaymentService) confirmBooking(ctx context.Context, bookingID, paymentIntentID string) error {
	current, err := ps.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return ps.ignoreUnknownBooking(err, paymentIntentID)
	}
	// Stripe redelivers events; reissuing here would invalidate the ticket already sent.
	if current.IsConfirmed() && current.TransactionID == paymentIntentID && current.QRSignature != "" {
		return nil
	}

	booking, err := ps.bookingRepo.UpdatePaymentStatus(ctx, bookingID, models.BookingConfirmed, models.PaymentPaid, paymentIntentID)
	if err != nil {
		return ps.ignoreUnknownBooking(err, paymentIntentID)
	}

	_, img, err := ps.tickets.IssueAndRender(ctx, booking.ID.Hex(), paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to issue ticket: %w", err)
	}

	if booking.Email == "" {
		return nil
	}
	body, err := ticketEmailBody(booking, "Your booking is confirmed.")
	if err != nil {
		return err
	}
	msg := &mailer.Message{
		To:      []string{booking.Email},
		Subject: "Your CinePass ticket",
		Body:    body,
		HTML:    true,
		Attachments: []mailer.Attachment{
			{Name: "ticket-qr.jpeg", Data: img},
		},
	}
	if err := ps.mailer.Send(ctx, msg); err != nil {
		ps.logger.Error("Failed to email ticket", "booking_id", booking.ID.Hex(), "error", err)
	}
	return nil
}

// failBooking records a failed attempt. Stripe does not order events, so a
// failure arriving after the booking left pending is ignored.
func (ps *PaymentService) failBooking(ctx context.Context, bookingID, paymentIntentID string) error {
	current, err := ps.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return ps.ignoreUnknownBooking(err, paymentIntentID)
	}
	if current.Status != models.BookingPending {
		ps.logger.Warn("Ignoring payment failure for settled booking",
			"booking_id", current.ID.Hex(), "status", current.Status, "payment_intent", paymentIntentID)
		return nil
	}
	_, err = ps.bookingRepo.UpdatePaymentStatus(ctx, bookingID, models.BookingPending, models.PaymentFailed, paymentIntentID)
	return ps.ignoreUnknownBooking(err, paymentIntentID)
}

// markPartialRefund keeps the booking and its ticket valid.
func (ps *PaymentService) markPartialRefund(ctx context.Context, paymentIntentID string, refunded int64) error {
	booking, err := ps.bookingRepo.GetBookingByTransactionID(ctx, paymentIntentID)
	if err != nil {
		return ps.ignoreUnknownBooking(err, paymentIntentID)
	}
	if booking.Status != models.BookingConfirmed {
		return nil
	}
	_, err = ps.bookingRepo.UpdatePaymentStatus(ctx, booking.ID.Hex(), models.BookingConfirmed, models.PaymentPartiallyRefunded, "")
	if err != nil {
		return ps.ignoreUnknownBooking(err, paymentIntentID)
	}
	ps.logger.Info("Partial refund recorded", "booking_id", booking.ID.Hex(), "payment_intent", paymentIntentID, "amount_refunded", refunded)
	return nil
}

func (ps *PaymentService) cancelBooking(ctx context.Context, paymentIntentID string) error {
	booking, err := ps.bookingRepo.GetBookingByTransactionID(ctx, paymentIntentID)
	if err != nil {
		return ps.ignoreUnknownBooking(err, paymentIntentID)
	}
	_, err = ps.bookingRepo.UpdatePaymentStatus(ctx, booking.ID.Hex(), models.BookingCancelled, models.PaymentRefunded, "")
	if err != nil {
		return ps.ignoreUnknownBooking(err, paymentIntentID)
	}
	ps.logger.Info("Booking cancelled after refund", "booking_id", booking.ID.Hex(), "payment_intent", paymentIntentID)
	return nil
}

var ticketEmailTemplate = template.Must(template.New("ticket").Funcs(template.FuncMap{
	"join": func(seats []string) string { return strings.Join(seats, ", ") },
}).Parse(
	`<p>{{.Lead}}</p>` +
		`{{with .Booking.MovieTitle}}<p><strong>{{.}}</strong></p>{{end}}` +
		`<p>{{.Date}} at {{.Booking.ShowTime}}{{with .Booking.Theatre}} &middot; {{.}}{{end}}</p>` +
		`{{if .Booking.Seats}}<p>Seats: {{join .Booking.Seats}}</p>{{end}}` +
		`<p>Show the attached QR code at the entrance.</p>`,
))

func ticketEmailBody(b *models.Booking, lead string) (string, error) {
	var buf bytes.Buffer
	err := ticketEmailTemplate.Execute(&buf, struct {
		Lead    string
		Date    string
		Booking *models.Booking
	}{
		Lead:    lead,
		Date:    b.ShowDate.Format("Mon, 02 Jan 2006"),
		Booking: b,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render ticket email: %w", err)
	}
	return buf.String(), nil
}

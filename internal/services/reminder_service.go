package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/cinepass/internal/clock"
	"github.com/joshua-takyi/cinepass/internal/mailer"
	"github.com/joshua-takyi/cinepass/internal/models"
)

type ReminderService struct {
	bookingRepo models.BookingRepo
	tickets     *TicketService
	mailer      mailer.Mailer
	clock       clock.Clock
	lead        time.Duration
	location    *time.Location
	logger      *slog.Logger
}

func NewReminderService(bookingRepo models.BookingRepo, tickets *TicketService, m mailer.Mailer, clk clock.Clock, lead time.Duration, location *time.Location, logger *slog.Logger) *ReminderService {
	return &ReminderService{
		bookingRepo: bookingRepo,
		tickets:     tickets,
		mailer:      m,
		clock:       clk,
		lead:        lead,
		location:    location,
		logger:      logger,
	}
}

// SendShowtimeReminders emails the ticket for every confirmed booking whose show
// starts within the lead window. It returns the number of reminders sent.
func (rs *ReminderService) SendShowtimeReminders(ctx context.Context) (int, error) {
	now := rs.clock.Now()
	until := now.Add(rs.lead)

	// showDate is stored as the UTC midnight of the local show date. The query
	// window is padded by a day on each side for the venue offset and
	// ShowStartsAt narrows it down.
	candidates, err := rs.bookingRepo.ListReminderCandidates(ctx, now.Add(-48*time.Hour), until.Add(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder candidates: %w", err)
	}

	sent := 0
	for _, booking := range candidates {
		starts := booking.ShowStartsAt(rs.location)
		if starts.Before(now) || starts.After(until) {
			continue
		}
		if err := rs.remind(ctx, booking); err != nil {
			rs.logger.Error("Failed to send showtime reminder", "booking_id", booking.ID.Hex(), "error", err)
			continue
		}
		sent++
	}

	rs.logger.Info("Showtime reminders processed", "candidates", len(candidates), "sent", sent)
	return sent, nil
}

func (rs *ReminderService) remind(ctx context.Context, booking *models.Booking) error {
	if booking.Email == "" || booking.TransactionID == "" {
		return fmt.Errorf("%w: booking has no email or transaction", ErrInvalidArgument)
	}

	// The ticket sent at confirmation stays valid; a failed send must not rotate it.
	_, img, err := rs.tickets.CurrentOrIssue(ctx, booking)
	if err != nil {
		return err
	}

	body, err := ticketEmailBody(booking, "Your show is coming up. Here is your ticket.")
	if err != nil {
		return err
	}
	msg := &mailer.Message{
		To:      []string{booking.Email},
		Subject: "Your show starts soon",
		Body:    body,
		HTML:    true,
		Attachments: []mailer.Attachment{
			{Name: "ticket-qr.jpeg", Data: img},
		},
	}
	if err := rs.mailer.Send(ctx, msg); err != nil {
		return err
	}
	return rs.bookingRepo.MarkReminderSent(ctx, booking.ID.Hex())
}

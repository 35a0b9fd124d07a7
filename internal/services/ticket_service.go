package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/joshua-takyi/cinepass/internal/helpers"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/yeqown/go-qrcode"
)

const TicketQRContentType = "image/jpeg"

type TicketService struct {
	bookingRepo  models.BookingRepo
	verification *VerificationService
}

func NewTicketService(bookingRepo models.BookingRepo, verification *VerificationService) *TicketService {
	return &TicketService{
		bookingRepo:  bookingRepo,
		verification: verification,
	}
}

// EncodeQR renders text as a JPEG QR image.
func EncodeQR(text string) ([]byte, error) {
	qrc, err := qrcode.New(text)
	if err != nil {
		return nil, fmt.Errorf("failed to build qr code: %w", err)
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return buf.Bytes(), nil
}

func (ts *TicketService) loadAuthorized(ctx context.Context, bookingID string, caller *helpers.EnhancedClaims, allowStaff bool) (*models.Booking, error) {
	bookingID = helpers.TrimID(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: booking id is required", ErrInvalidArgument)
	}

	booking, err := ts.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if caller == nil {
		return nil, ErrForbidden
	}
	if booking.IsOwner(caller.UserID) || caller.IsAdmin() || (allowStaff && caller.IsStaff()) {
		return booking, nil
	}
	return nil, ErrForbidden
}

// IssueForCaller issues a signature on behalf of the booking owner or an admin.
func (ts *TicketService) IssueForCaller(ctx context.Context, bookingID, transactionID string, caller *helpers.EnhancedClaims) (string, error) {
	if helpers.StringTrim(transactionID) == "" {
		return "", fmt.Errorf("%w: transactionId is required", ErrInvalidArgument)
	}
	booking, err := ts.loadAuthorized(ctx, bookingID, caller, false)
	if err != nil {
		return "", err
	}
	return ts.verification.Issue(ctx, booking.ID.Hex(), transactionID)
}

// RenderCurrentQR renders the booking's stored signature without reissuing it,
// so viewing a ticket never invalidates copies already sent out.
func (ts *TicketService) RenderCurrentQR(ctx context.Context, bookingID string, caller *helpers.EnhancedClaims) ([]byte, error) {
	booking, err := ts.loadAuthorized(ctx, bookingID, caller, true)
	if err != nil {
		return nil, err
	}
	if booking.QRSignature == "" {
		return nil, ErrSignatureNotIssued
	}

	return EncodeQR(ts.verification.VerifyURL(booking.QRSignature))
}

// IssueAndRender issues a fresh signature and returns it with its QR image.
func (ts *TicketService) IssueAndRender(ctx context.Context, bookingID, transactionID string) (string, []byte, error) {
	token, err := ts.verification.Issue(ctx, bookingID, transactionID)
	if err != nil {
		return "", nil, err
	}
	img, err := EncodeQR(ts.verification.VerifyURL(token))
	if err != nil {
		return "", nil, err
	}
	return token, img, nil
}

// CurrentOrIssue renders the booking's live signature when it still verifies for
// the booking's transaction, and issues a new one otherwise.
func (ts *TicketService) CurrentOrIssue(ctx context.Context, booking *models.Booking) (string, []byte, error) {
	if booking.QRSignature != "" {
		res, err := ts.verification.Verify(ctx, booking.QRSignature)
		if err == nil && res.Verification.TransactionID == booking.TransactionID {
			img, err := EncodeQR(ts.verification.VerifyURL(booking.QRSignature))
			if err != nil {
				return "", nil, err
			}
			return booking.QRSignature, img, nil
		}
	}
	return ts.IssueAndRender(ctx, booking.ID.Hex(), booking.TransactionID)
}

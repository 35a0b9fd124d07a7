package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua-takyi/cinepass/internal/clock"
	"github.com/joshua-takyi/cinepass/internal/helpers"
	"github.com/joshua-takyi/cinepass/internal/models"
)

// QRSignatureTTL is fixed; it is not configurable per call.
const QRSignatureTTL = 30 * 24 * time.Hour

var qrSigningMethod = jwt.SigningMethodHS256

// Verification is the decoded content of a QR signature.
type Verification struct {
	BookingID     string    `json:"bookingId"`
	TransactionID string    `json:"transactionId"`
	ShowDate      time.Time `json:"showDate"`
	ShowTime      string    `json:"showTime"`
	UserID        string    `json:"userId"`
	IssuedAt      time.Time `json:"issuedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type VerificationResult struct {
	Verification Verification    `json:"verification"`
	Booking      *models.Booking `json:"booking"`
}

// VerificationService issues and checks the signed tokens printed as ticket QR codes.
// A booking holds exactly one live token: issuing stores the new token in place of
// the old one, and verification requires the stored token to match.
type VerificationService struct {
	bookingRepo models.BookingRepo
	secret      []byte
	clock       clock.Clock
	publicURL   string
	logger      *slog.Logger
}

func NewVerificationService(bookingRepo models.BookingRepo, secret []byte, clk clock.Clock, publicURL string, logger *slog.Logger) *VerificationService {
	return &VerificationService{
		bookingRepo: bookingRepo,
		secret:      secret,
		clock:       clk,
		publicURL:   strings.TrimRight(publicURL, "/"),
		logger:      logger,
	}
}

// Issue signs a token for the booking/transaction pair and makes it the booking's
// only valid QR signature.
func (vs *VerificationService) Issue(ctx context.Context, bookingID, transactionID string) (string, error) {
	bookingID = helpers.TrimID(bookingID)
	transactionID = strings.TrimSpace(transactionID)
	if bookingID == "" || transactionID == "" {
		return "", fmt.Errorf("%w: bookingId and transactionId are required", ErrInvalidArgument)
	}

	booking, err := vs.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			return "", ErrBookingNotFound
		}
		return "", fmt.Errorf("failed to load booking: %w", err)
	}

	now := vs.clock.Now()
	claims := helpers.QRClaims{
		BookingID:     booking.ID.Hex(),
		TransactionID: transactionID,
		ShowDate:      booking.ShowDate,
		ShowTime:      booking.ShowTime,
		UserID:        booking.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   booking.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(QRSignatureTTL)),
		},
	}

	token, err := jwt.NewWithClaims(qrSigningMethod, claims).SignedString(vs.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign qr token: %w", err)
	}

	if err := vs.bookingRepo.SetQRSignature(ctx, claims.BookingID, token, now); err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			return "", ErrBookingNotFound
		}
		return "", fmt.Errorf("failed to store qr signature: %w", err)
	}

	vs.logger.Info("QR signature issued",
		"booking_id", claims.BookingID,
		"transaction_id", transactionID,
		"expires_at", claims.ExpiresAt.Time,
	)
	return token, nil
}

// Verify checks signature and expiry, then that the token is still the booking's
// current signature, then that the booking is confirmed. It never writes.
func (vs *VerificationService) Verify(ctx context.Context, token string) (*VerificationResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidArgument)
	}

	claims := &helpers.QRClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return vs.secret, nil
	},
		jwt.WithValidMethods([]string{qrSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(vs.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		vs.logger.Debug("QR signature rejected", "error", err)
		return nil, ErrInvalidSignature
	}
	if !parsed.Valid || claims.BookingID == "" {
		return nil, ErrInvalidSignature
	}

	booking, err := vs.bookingRepo.GetBookingBySignature(ctx, claims.BookingID, token)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			vs.logger.Info("QR signature superseded or unknown", "booking_id", claims.BookingID)
			return nil, ErrSignatureSuperseded
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	if !booking.IsConfirmed() {
		vs.logger.Info("QR signature for unconfirmed booking",
			"booking_id", claims.BookingID,
			"status", booking.Status,
		)
		return nil, ErrBookingNotConfirmed
	}

	v := Verification{
		BookingID:     claims.BookingID,
		TransactionID: claims.TransactionID,
		ShowDate:      claims.ShowDate,
		ShowTime:      claims.ShowTime,
		UserID:        claims.UserID,
	}
	if claims.IssuedAt != nil {
		v.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		v.ExpiresAt = claims.ExpiresAt.Time
	}
	return &VerificationResult{Verification: v, Booking: booking}, nil
}

// VerifyURL is the link encoded into ticket QR codes.
func (vs *VerificationService) VerifyURL(token string) string {
	return vs.publicURL + "/api/v1/bookings/verify-qr?token=" + url.QueryEscape(token)
}

package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/cinepass/internal/clock"
	"github.com/joshua-takyi/cinepass/internal/helpers"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	testSecret = []byte("qr-test-secret")
	testNow    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func confirmedBooking() *models.Booking {
	return &models.Booking{
		ID:         primitive.NewObjectID(),
		UserID:     "user-1",
		Email:      "guest@example.com",
		MovieTitle: "Dune: Part Two",
		Theatre:    "Hall 3",
		Seats:      []string{"F7", "F8"},
		ShowDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ShowTime:   "19:30",
		Status:     models.BookingConfirmed,
	}
}

func newVerificationFixture(t *testing.T, bookings ...*models.Booking) (*VerificationService, *testutil.BookingRepo, *testutil.Clock) {
	t.Helper()
	repo := testutil.NewBookingRepo(bookings...)
	clk := testutil.NewClock(testNow)
	svc := NewVerificationService(repo, testSecret, clk, "https://tickets.example.com/", testutil.DiscardLogger())
	return svc, repo, clk
}

func signQRToken(t *testing.T, method jwt.SigningMethod, key interface{}, bookingID string) string {
	t.Helper()
	claims := helpers.QRClaims{
		BookingID:     bookingID,
		TransactionID: "txn-forged",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(testNow),
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestVerificationService_IssueAndVerify(t *testing.T) {
	booking := confirmedBooking()
	svc, repo, _ := newVerificationFixture(t, booking)
	ctx := context.Background()

	token, err := svc.Issue(ctx, booking.ID.Hex(), "txn-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	stored := repo.Get(booking.ID.Hex())
	assert.Equal(t, token, stored.QRSignature)
	require.NotNil(t, stored.LastQRUpdate)
	assert.True(t, stored.LastQRUpdate.Equal(testNow))

	res, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, booking.ID.Hex(), res.Verification.BookingID)
	assert.Equal(t, "txn-1", res.Verification.TransactionID)
	assert.Equal(t, "user-1", res.Verification.UserID)
	assert.Equal(t, "19:30", res.Verification.ShowTime)
	assert.True(t, res.Verification.ShowDate.Equal(booking.ShowDate))
	assert.True(t, res.Verification.IssuedAt.Equal(testNow))
	assert.True(t, res.Verification.ExpiresAt.Equal(testNow.Add(QRSignatureTTL)))
	assert.Equal(t, booking.ID, res.Booking.ID)
	assert.Equal(t, []string{"F7", "F8"}, res.Booking.Seats)
}

func TestVerificationService_ReissueSupersedesPreviousToken(t *testing.T) {
	booking := confirmedBooking()
	svc, _, _ := newVerificationFixture(t, booking)
	ctx := context.Background()

	tok1, err := svc.Issue(ctx, booking.ID.Hex(), "T1")
	require.NoError(t, err)
	res, err := svc.Verify(ctx, tok1)
	require.NoError(t, err)
	assert.Equal(t, booking.ID.Hex(), res.Verification.BookingID)

	tok2, err := svc.Issue(ctx, booking.ID.Hex(), "T2")
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok2)

	_, err = svc.Verify(ctx, tok1)
	assert.ErrorIs(t, err, ErrSignatureSuperseded)

	res, err = svc.Verify(ctx, tok2)
	require.NoError(t, err)
	assert.Equal(t, "T2", res.Verification.TransactionID)
}

func TestVerificationService_ReissueWithSameInputsStillSupersedes(t *testing.T) {
	booking := confirmedBooking()
	svc, _, _ := newVerificationFixture(t, booking)
	ctx := context.Background()

	tok1, err := svc.Issue(ctx, booking.ID.Hex(), "T1")
	require.NoError(t, err)
	tok2, err := svc.Issue(ctx, booking.ID.Hex(), "T1")
	require.NoError(t, err)
	require.NotEqual(t, tok1, tok2)

	_, err = svc.Verify(ctx, tok1)
	assert.ErrorIs(t, err, ErrSignatureSuperseded)
	_, err = svc.Verify(ctx, tok2)
	assert.NoError(t, err)
}

func TestVerificationService_Expiry(t *testing.T) {
	booking := confirmedBooking()
	svc, _, clk := newVerificationFixture(t, booking)
	ctx := context.Background()

	token, err := svc.Issue(ctx, booking.ID.Hex(), "txn-1")
	require.NoError(t, err)

	clk.Advance(29 * 24 * time.Hour)
	_, err = svc.Verify(ctx, token)
	require.NoError(t, err)

	clk.Advance(2 * 24 * time.Hour)
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerificationService_RejectsForgedTokens(t *testing.T) {
	booking := confirmedBooking()
	svc, repo, _ := newVerificationFixture(t, booking)
	ctx := context.Background()

	token, err := svc.Issue(ctx, booking.ID.Hex(), "txn-1")
	require.NoError(t, err)

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		raw, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		payload["transactionId"] = "txn-stolen"
		raw, err = json.Marshal(payload)
		require.NoError(t, err)
		forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString(raw) + "." + parts[2]

		_, err = svc.Verify(ctx, forged)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewVerificationService(repo, []byte("someone-else"), clock.NewFixed(testNow), "", testutil.DiscardLogger())
		forged := signQRToken(t, jwt.SigningMethodHS256, []byte("someone-else"), booking.ID.Hex())
		require.NoError(t, repo.SetQRSignature(ctx, booking.ID.Hex(), forged, testNow))
		_, err := other.Verify(ctx, forged)
		require.NoError(t, err)

		_, err = svc.Verify(ctx, forged)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("different hmac algorithm", func(t *testing.T) {
		forged := signQRToken(t, jwt.SigningMethodHS384, testSecret, booking.ID.Hex())
		require.NoError(t, repo.SetQRSignature(ctx, booking.ID.Hex(), forged, testNow))
		_, err := svc.Verify(ctx, forged)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("unsigned token", func(t *testing.T) {
		forged := signQRToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, booking.ID.Hex())
		require.NoError(t, repo.SetQRSignature(ctx, booking.ID.Hex(), forged, testNow))
		_, err := svc.Verify(ctx, forged)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestVerificationService_SignatureNeverIssued(t *testing.T) {
	booking := confirmedBooking()
	svc, _, _ := newVerificationFixture(t, booking)
	ctx := context.Background()

	token := signQRToken(t, jwt.SigningMethodHS256, testSecret, booking.ID.Hex())
	_, err := svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrSignatureSuperseded)

	unknown := signQRToken(t, jwt.SigningMethodHS256, testSecret, primitive.NewObjectID().Hex())
	_, err = svc.Verify(ctx, unknown)
	assert.ErrorIs(t, err, ErrSignatureSuperseded)
}

func TestVerificationService_BookingNotConfirmed(t *testing.T) {
	for _, status := range []models.BookingStatus{models.BookingPending, models.BookingCancelled} {
		t.Run(string(status), func(t *testing.T) {
			booking := confirmedBooking()
			booking.Status = status
			svc, _, _ := newVerificationFixture(t, booking)
			ctx := context.Background()

			token, err := svc.Issue(ctx, booking.ID.Hex(), "txn-1")
			require.NoError(t, err)

			_, err = svc.Verify(ctx, token)
			assert.ErrorIs(t, err, ErrBookingNotConfirmed)
		})
	}
}

func TestVerificationService_IssueErrors(t *testing.T) {
	booking := confirmedBooking()
	svc, repo, _ := newVerificationFixture(t, booking)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "", "txn-1")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Issue(ctx, booking.ID.Hex(), "  ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Issue(ctx, primitive.NewObjectID().Hex(), "txn-1")
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Empty(t, repo.Get(booking.ID.Hex()).QRSignature)

	_, err = svc.Verify(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestVerificationService_IssueAcceptsQuotedID(t *testing.T) {
	booking := confirmedBooking()
	svc, _, _ := newVerificationFixture(t, booking)

	token, err := svc.Issue(context.Background(), `"`+booking.ID.Hex()+`"`, "txn-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestVerificationService_VerifyURL(t *testing.T) {
	svc, _, _ := newVerificationFixture(t)

	got := svc.VerifyURL("a.b+c")
	assert.Equal(t, "https://tickets.example.com/api/v1/bookings/verify-qr?token=a.b%2Bc", got)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/services"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{services.ErrInvalidSignature, http.StatusBadRequest, "Invalid QR code"},
	{services.ErrTokenExpired, http.StatusBadRequest, "QR code has expired"},
	{services.ErrSignatureSuperseded, http.StatusBadRequest, "Invalid or outdated QR code"},
	{services.ErrBookingNotConfirmed, http.StatusBadRequest, "Booking is not confirmed"},
	{services.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
	{services.ErrSignatureNotIssued, http.StatusNotFound, "No QR code has been issued for this booking"},
	{services.ErrForbidden, http.StatusForbidden, "You do not have access to this booking"},
	{services.ErrInvalidOTP, http.StatusUnauthorized, "Invalid code"},
	{services.ErrOTPExpired, http.StatusUnauthorized, "Code has expired or was not requested"},
	{services.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many attempts, request a new code"},
	{services.ErrBookingNotPayable, http.StatusConflict, "Booking is not awaiting payment"},
	{services.ErrPaymentsDisabled, http.StatusServiceUnavailable, "Payments are not available"},
	{services.ErrInvalidWebhook, http.StatusBadRequest, "Invalid webhook"},
	{models.ErrUserNotFound, http.StatusNotFound, "User not found"},
}

// respondError writes the failure envelope for err. Unknown errors become a 500
// and are attached to the context for ErrorHandler to log.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, models.ErrorResponse(m.message))
			return
		}
	}
	if errors.Is(err, services.ErrInvalidArgument) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse("Internal server error"))
}

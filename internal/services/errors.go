package services

import "errors"

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrInvalidSignature    = errors.New("invalid qr signature")
	ErrTokenExpired        = errors.New("qr signature expired")
	ErrSignatureSuperseded = errors.New("qr signature invalid or superseded")
	ErrBookingNotConfirmed = errors.New("booking not confirmed")
	ErrSignatureNotIssued  = errors.New("no qr signature issued for booking")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp expired or not requested")
	ErrTooManyAttempts     = errors.New("too many otp attempts")
	ErrBookingNotPayable   = errors.New("booking is not awaiting payment")
	ErrPaymentsDisabled    = errors.New("payments are not configured")
	ErrInvalidWebhook      = errors.New("invalid webhook payload")
)

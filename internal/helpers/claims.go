package helpers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// QRClaims binds a booking to the payment transaction it was issued for.
type QRClaims struct {
	BookingID     string    `json:"bookingId"`
	TransactionID string    `json:"transactionId"`
	ShowDate      time.Time `json:"showDate"`
	ShowTime      string    `json:"showTime"`
	UserID        string    `json:"userId"`
	jwt.RegisteredClaims
}

// SessionClaims are carried by the access_token issued after OTP login.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SocialClaims is the subset of an identity provider token we read.
type SocialClaims struct {
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
	Name          string   `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// flexBool accepts both true and "true"; some providers send the string form.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}

// EnhancedClaims is what the auth middleware stores under "user".
type EnhancedClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Provider string `json:"provider,omitempty"`
}

// Helper methods for role checking
func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}

func (ec *EnhancedClaims) IsStaff() bool {
	return ec.Role == "staff"
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "guest"
	}
	return ec.Role
}

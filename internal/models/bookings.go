package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"

	PaymentPartiallyRefunded = "partially_refunded"
)

// Booking is written by the booking and payment flows. QRSignature and
// LastQRUpdate are only ever set through SetQRSignature.
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"userId" json:"userId"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	MovieTitle    string             `bson:"movieTitle,omitempty" json:"movieTitle,omitempty"`
	Theatre       string             `bson:"theatre,omitempty" json:"theatre,omitempty"`
	Seats         []string           `bson:"seats,omitempty" json:"seats,omitempty"`
	ShowDate      time.Time          `bson:"showDate" json:"showDate"`
	ShowTime      string             `bson:"showTime" json:"showTime"` // e.g. "19:30" or "7:30 PM"
	Status        BookingStatus      `bson:"status" json:"status"`
	PaymentStatus string             `bson:"paymentStatus,omitempty" json:"paymentStatus,omitempty"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	TotalAmount   int64              `bson:"totalAmount,omitempty" json:"totalAmount,omitempty"` // minor units
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
	QRSignature   string             `bson:"qrSignature,omitempty" json:"-"`
	LastQRUpdate  *time.Time         `bson:"lastQRUpdate,omitempty" json:"lastQRUpdate,omitempty"`
	ReminderSent  bool               `bson:"reminderSent,omitempty" json:"reminderSent,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt     time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingConfirmed
}

func (b *Booking) IsOwner(userID string) bool {
	return b.UserID != "" && b.UserID == userID
}

// ShowStartsAt reads ShowDate's calendar day and ShowTime as wall clock time in
// loc (UTC when nil). Unparseable times fall back to midnight.
func (b *Booking) ShowStartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := b.ShowDate.Date()
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM", "03:04 PM"} {
		t, err := time.Parse(layout, b.ShowTime)
		if err == nil {
			return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
		}
	}
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

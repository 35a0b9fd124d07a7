// Package testutil holds in-memory stand-ins for the repositories and mailer.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/cinepass/internal/mailer"
	"github.com/joshua-takyi/cinepass/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Clock lets a test move time forward between calls.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type BookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	Reminded []string
}

// NewBookingRepo assigns ids to bookings that have none.
func NewBookingRepo(bookings ...*models.Booking) *BookingRepo {
	r := &BookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		r.bookings[b.ID.Hex()] = b
	}
	return r
}

// Get returns a copy of the stored booking, or nil.
func (r *BookingRepo) Get(id string) *models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

func (r *BookingRepo) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	if b := r.Get(id); b != nil {
		return b, nil
	}
	return nil, models.ErrBookingNotFound
}

func (r *BookingRepo) GetBookingBySignature(ctx context.Context, id string, signature string) (*models.Booking, error) {
	b := r.Get(id)
	if b == nil || signature == "" || b.QRSignature != signature {
		return nil, models.ErrBookingNotFound
	}
	return b, nil
}

func (r *BookingRepo) GetBookingByTransactionID(ctx context.Context, transactionID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if transactionID != "" && b.TransactionID == transactionID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, models.ErrBookingNotFound
}

func (r *BookingRepo) SetQRSignature(ctx context.Context, id string, signature string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	b.QRSignature = signature
	b.LastQRUpdate = &at
	return nil
}

func (r *BookingRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.BookingStatus, paymentStatus string, transactionID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	b.Status = status
	b.PaymentStatus = paymentStatus
	if transactionID != "" {
		b.TransactionID = transactionID
	}
	cp := *b
	return &cp, nil
}

func (r *BookingRepo) ListReminderCandidates(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.Status != models.BookingConfirmed || b.ReminderSent {
			continue
		}
		if b.ShowDate.Before(from) || b.ShowDate.After(to) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (r *BookingRepo) MarkReminderSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	b.ReminderSent = true
	r.Reminded = append(r.Reminded, id)
	return nil
}

type UserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*models.User)}
}

func (r *UserRepo) FindOrCreateUserByEmail(ctx context.Context, email string, provider string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	u := &models.User{ID: primitive.NewObjectID(), Email: email, Role: models.RoleUser, Provider: provider}
	r.users[u.ID.Hex()] = u
	return u, nil
}

// Add stores u as is, keeping its role.
func (r *UserRepo) Add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID.Hex()] = u
	return u
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrUserNotFound
}

type OTPRepo struct {
	mu       sync.Mutex
	codes    map[string]string
	attempts map[string]int64
}

func NewOTPRepo() *OTPRepo {
	return &OTPRepo{codes: make(map[string]string), attempts: make(map[string]int64)}
}

func (r *OTPRepo) SaveOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[email] = code
	delete(r.attempts, email)
	return nil
}

func (r *OTPRepo) GetOTP(ctx context.Context, email string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[email]
	if !ok {
		return "", models.ErrOTPNotFound
	}
	return code, nil
}

func (r *OTPRepo) IncrementOTPAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[email]++
	return r.attempts[email], nil
}

func (r *OTPRepo) DeleteOTP(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, email)
	delete(r.attempts, email)
	return nil
}

// Mailer records messages. Set Err to make Send fail.
type Mailer struct {
	mu   sync.Mutex
	sent []*mailer.Message
	Err  error
}

func (m *Mailer) Send(ctx context.Context, msg *mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Mailer) Messages() []*mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mailer.Message(nil), m.sent...)
}

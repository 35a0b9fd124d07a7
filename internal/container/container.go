package container

import (
	"log/slog"

	"github.com/joshua-takyi/cinepass/internal/clock"
	"github.com/joshua-takyi/cinepass/internal/config"
	"github.com/joshua-takyi/cinepass/internal/helpers"
	"github.com/joshua-takyi/cinepass/internal/mailer"
	"github.com/joshua-takyi/cinepass/internal/models"
	"github.com/joshua-takyi/cinepass/internal/services"
	"github.com/stripe/stripe-go/v82"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	VerificationService *services.VerificationService
	TicketService       *services.TicketService
	UserService         *services.UserService
	PaymentService      *services.PaymentService
	ReminderService     *services.ReminderService
}

// Deps are the external clients a container is built from. Social may be nil.
type Deps struct {
	BookingRepo models.BookingRepo
	UserRepo    models.UserRepo
	OTPRepo     models.OTPRepo
	Mailer      mailer.Mailer
	Social      *helpers.SocialVerifier
	Clock       clock.Clock
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, deps Deps) *Container {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}

	verification := services.NewVerificationService(deps.BookingRepo, []byte(cfg.QRSecret), clk, cfg.PublicURL, logger)
	tickets := services.NewTicketService(deps.BookingRepo, verification)

	userService := services.NewUserService(deps.UserRepo, deps.OTPRepo, deps.Mailer, clk, services.UserServiceOptions{
		SessionSecret:  []byte(cfg.JWTSecret),
		SessionTTL:     cfg.SessionTTL,
		OTPTTL:         cfg.OTPTTL,
		OTPMaxAttempts: cfg.OTPMaxAttempts,
		Social:         deps.Social,
	}, logger)

	var sc *stripe.Client
	if cfg.StripeSecretKey != "" {
		sc = stripe.NewClient(cfg.StripeSecretKey)
	}
	payments := services.NewPaymentService(deps.BookingRepo, tickets, deps.Mailer, sc, cfg.StripeWebhookSecret, logger)
	reminders := services.NewReminderService(deps.BookingRepo, tickets, deps.Mailer, clk, cfg.ReminderLead, cfg.VenueLocation, logger)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		VerificationService: verification,
		TicketService:       tickets,
		UserService:         userService,
		PaymentService:      payments,
		ReminderService:     reminders,
	}
}

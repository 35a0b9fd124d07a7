package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/joshua-takyi/cinepass/internal/clock"
	"github.com/joshua-takyi/cinepass/internal/helpers"
	"github.com/joshua-takyi/cinepass/internal/mailer"
	"github.com/joshua-takyi/cinepass/internal/models"
)

type UserServiceOptions struct {
	SessionSecret  []byte
	SessionTTL     time.Duration
	OTPTTL         time.Duration
	OTPMaxAttempts int
	// Social is optional; nil disables identity-provider tokens.
	Social *helpers.SocialVerifier
}

type UserService struct {
	userRepo models.UserRepo
	otpRepo  models.OTPRepo
	mailer   mailer.Mailer
	clock    clock.Clock
	opts     UserServiceOptions
	logger   *slog.Logger
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"`
	User      *models.User `json:"user"`
}

func NewUserService(userRepo models.UserRepo, otpRepo models.OTPRepo, m mailer.Mailer, clk clock.Clock, opts UserServiceOptions, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		mailer:   m,
		clock:    clk,
		opts:     opts,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (us *UserService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email format", ErrInvalidArgument)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	if err := us.otpRepo.SaveOTP(ctx, email, code, us.opts.OTPTTL); err != nil {
		return err
	}

	minutes := int(us.opts.OTPTTL / time.Minute)
	err = us.mailer.Send(ctx, &mailer.Message{
		To:      []string{email},
		Subject: "Your CinePass login code",
		Body:    fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, minutes),
	})
	if err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}
	us.logger.Info("OTP sent", "email", email)
	return nil
}

func (us *UserService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidArgument)
	}
	if err := models.Validate.Var(code, "required,len=6,numeric"); err != nil {
		return nil, fmt.Errorf("%w: code must be 6 digits", ErrInvalidArgument)
	}

	stored, err := us.otpRepo.GetOTP(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrOTPNotFound) {
			return nil, ErrOTPExpired
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		attempts, err := us.otpRepo.IncrementOTPAttempts(ctx, email, us.opts.OTPTTL)
		if err != nil {
			return nil, err
		}
		if attempts >= int64(us.opts.OTPMaxAttempts) {
			if err := us.otpRepo.DeleteOTP(ctx, email); err != nil {
				us.logger.Error("Failed to delete exhausted OTP", "email", email, "error", err)
			}
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidOTP
	}

	if err := us.otpRepo.DeleteOTP(ctx, email); err != nil {
		return nil, err
	}

	user, err := us.userRepo.FindOrCreateUserByEmail(ctx, email, "otp")
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return us.newSession(user)
}

func (us *UserService) newSession(user *models.User) (*AuthResult, error) {
	token, err := helpers.SignSessionToken(us.opts.SessionSecret, user.ID.Hex(), user.Email, user.Role, us.clock.Now(), us.opts.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return &AuthResult{
		Token:     token,
		ExpiresIn: int(us.opts.SessionTTL / time.Second),
		User:      user,
	}, nil
}

// Authenticate resolves a bearer/cookie token to caller claims. Local session
// tokens are tried first, then identity-provider tokens when configured.
func (us *UserService) Authenticate(ctx context.Context, token string) (*helpers.EnhancedClaims, error) {
	claims, err := helpers.ValidateSessionToken(us.opts.SessionSecret, token, us.clock.Now())
	if err == nil {
		return &helpers.EnhancedClaims{
			UserID:   claims.Subject,
			Email:    claims.Email,
			Role:     claims.Role,
			Provider: "otp",
		}, nil
	}
	if us.opts.Social == nil {
		return nil, err
	}

	social, socialErr := us.opts.Social.Validate(token)
	if socialErr != nil {
		return nil, fmt.Errorf("%v; %w", err, socialErr)
	}
	issuer, _ := social.GetIssuer()
	user, err := us.userRepo.FindOrCreateUserByEmail(ctx, social.Email, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &helpers.EnhancedClaims{
		UserID:   user.ID.Hex(),
		Email:    user.Email,
		Role:     user.Role,
		Provider: issuer,
	}, nil
}

func (us *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

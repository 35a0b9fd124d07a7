package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRepo keeps one-time login codes outside the process so they expire on
// their own and are shared between instances.
type OTPRepo interface {
	SaveOTP(ctx context.Context, email, code string, ttl time.Duration) error
	GetOTP(ctx context.Context, email string) (string, error)
	IncrementOTPAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error)
	DeleteOTP(ctx context.Context, email string) error
}

func otpKey(email string) string {
	return "otp:" + email
}

func otpAttemptsKey(email string) string {
	return "otp:" + email + ":attempts"
}

func (r *RedisRepo) SaveOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := r.redisClient.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("error saving otp: %w", err)
	}
	if err := r.redisClient.Del(ctx, otpAttemptsKey(email)).Err(); err != nil {
		return fmt.Errorf("error resetting otp attempts: %w", err)
	}
	return nil
}

func (r *RedisRepo) GetOTP(ctx context.Context, email string) (string, error) {
	code, err := r.redisClient.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrOTPNotFound
		}
		return "", fmt.Errorf("error reading otp: %w", err)
	}
	return code, nil
}

func (r *RedisRepo) IncrementOTPAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	key := otpAttemptsKey(email)
	n, err := r.redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("error counting otp attempts: %w", err)
	}
	if n == 1 {
		if err := r.redisClient.Expire(ctx, key, ttl).Err(); err != nil {
			return n, fmt.Errorf("error setting otp attempts expiry: %w", err)
		}
	}
	return n, nil
}

func (r *RedisRepo) DeleteOTP(ctx context.Context, email string) error {
	if err := r.redisClient.Del(ctx, otpKey(email), otpAttemptsKey(email)).Err(); err != nil {
		return fmt.Errorf("error deleting otp: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
)

var (
	// ErrOTPExpired means no code is pending for the phone number.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPMismatch means a code is pending but the submitted one is wrong.
	ErrOTPMismatch = errors.New("otp mismatch")
)

// OTPIssue reports the outcome of an issue request. When a code was already
// pending for the number, SentBefore is true and Code is empty: the caller
// must not send another SMS.
type OTPIssue struct {
	Code          string
	SentBefore    bool
	RemainingTime time.Duration
}

type OTPStore interface {
	// Issue stores a fresh login code for the phone number unless one is
	// already pending. Only the bcrypt hash is kept.
	Issue(ctx context.Context, phone, code string, ttl time.Duration) (OTPIssue, error)
	// Confirm checks the submitted code and consumes it on success.
	Confirm(ctx context.Context, phone, code string) error
	Close() error
}

type otpRecord struct {
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

type otpStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewOTPStore(log *logger.Logger) (OTPStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &otpStore{
		log: log.With("service", "RedisOTPStore"),
		rdb: rdb,
	}, nil
}

func otpKey(phone string) string { return "otp:" + phone }

func (s *otpStore) Issue(ctx context.Context, phone, code string, ttl time.Duration) (OTPIssue, error) {
	key := otpKey(phone)

	existing, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var record otpRecord
		if err := json.Unmarshal([]byte(existing), &record); err != nil {
			return OTPIssue{}, fmt.Errorf("decode otp record: %w", err)
		}
		remaining := ttl - time.Since(record.CreatedAt)
		if remaining < 0 {
			remaining = 0
		}
		return OTPIssue{SentBefore: true, RemainingTime: remaining}, nil
	}
	if !errors.Is(err, goredis.Nil) {
		return OTPIssue{}, fmt.Errorf("redis get: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return OTPIssue{}, fmt.Errorf("hash otp: %w", err)
	}
	raw, err := json.Marshal(otpRecord{Hash: string(hash), CreatedAt: time.Now().UTC()})
	if err != nil {
		return OTPIssue{}, fmt.Errorf("encode otp record: %w", err)
	}

	// NX guards against a concurrent issue for the same number.
	set, err := s.rdb.SetNX(ctx, key, raw, ttl).Result()
	if err != nil {
		return OTPIssue{}, fmt.Errorf("redis set: %w", err)
	}
	if !set {
		remaining, err := s.rdb.TTL(ctx, key).Result()
		if err != nil {
			return OTPIssue{}, fmt.Errorf("redis ttl: %w", err)
		}
		return OTPIssue{SentBefore: true, RemainingTime: remaining}, nil
	}

	s.log.Debug("OTP issued", "phone_number", phone, "ttl", ttl)
	return OTPIssue{Code: code, RemainingTime: ttl}, nil
}

func (s *otpStore) Confirm(ctx context.Context, phone, code string) error {
	key := otpKey(phone)

	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return ErrOTPExpired
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}

	var record otpRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return fmt.Errorf("decode otp record: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(record.Hash), []byte(code)) != nil {
		return ErrOTPMismatch
	}

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn("Failed to delete consumed OTP", "phone_number", phone, "error", err)
	}
	return nil
}

func (s *otpStore) Close() error {
	return s.rdb.Close()
}

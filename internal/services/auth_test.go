package services

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/deebajee2009/OnlineExamBackEnd/internal/clients/redis"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/pkg/apperr"
)

// fakeOTPStore keeps codes in a map so auth flows run without redis.
type fakeOTPStore struct {
	codes map[string]string
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{codes: make(map[string]string)}
}

func (s *fakeOTPStore) Issue(_ context.Context, phone, code string, ttl time.Duration) (redisclient.OTPIssue, error) {
	if _, pending := s.codes[phone]; pending {
		return redisclient.OTPIssue{SentBefore: true, RemainingTime: ttl / 2}, nil
	}
	s.codes[phone] = code
	return redisclient.OTPIssue{Code: code, RemainingTime: ttl}, nil
}

func (s *fakeOTPStore) Confirm(_ context.Context, phone, code string) error {
	stored, ok := s.codes[phone]
	if !ok {
		return redisclient.ErrOTPExpired
	}
	if stored != code {
		return redisclient.ErrOTPMismatch
	}
	delete(s.codes, phone)
	return nil
}

func (s *fakeOTPStore) Close() error { return nil }

func newAuthFixture(t *testing.T) (*fixture, *fakeOTPStore, AuthService) {
	t.Helper()
	f := newFixture(t)
	store := newFakeOTPStore()
	cfg := AuthConfig{
		Secret:     "test-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
		DebugOTP:   true,
	}
	svc := NewAuthService(f.userRepo, store, NewLogSMSSender(f.log), cfg, f.log)
	return f, store, svc
}

func TestRequestOTP(t *testing.T) {
	_, store, svc := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.RequestOTP(ctx, "+989121234567")
	if err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	if resp.SentBefore {
		t.Error("first request reported a pending code")
	}
	// The +98 prefix is stored in local form.
	if _, ok := store.codes["09121234567"]; !ok {
		t.Error("code was not stored under the normalized phone number")
	}

	resp, err = svc.RequestOTP(ctx, "09121234567")
	if err != nil {
		t.Fatalf("second RequestOTP: %v", err)
	}
	if !resp.SentBefore {
		t.Error("second request did not report the pending code")
	}
	if resp.RemainingTime <= 0 {
		t.Errorf("remaining time = %d, want positive", resp.RemainingTime)
	}

	_, err = svc.RequestOTP(ctx, "12345")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("bad phone: kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestVerifyOTPCreatesStudent(t *testing.T) {
	f, _, svc := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestOTP(ctx, "09121234567"); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}

	pair, err := svc.VerifyOTP(ctx, "09121234567", "11111", domain.RoleStudent)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("token pair is incomplete")
	}
	if pair.Role != domain.RoleStudent {
		t.Errorf("role = %q, want student", pair.Role)
	}

	user, err := f.userRepo.GetByPhone(ctx, nil, "09121234567")
	if err != nil {
		t.Fatalf("student was not created: %v", err)
	}
	if user.Role != domain.RoleStudent {
		t.Errorf("created role = %q, want student", user.Role)
	}

	// The code is consumed on success.
	_, err = svc.VerifyOTP(ctx, "09121234567", "11111", domain.RoleStudent)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("reused code: kind = %v, want not-found", apperr.KindOf(err))
	}
}

func TestVerifyOTPErrors(t *testing.T) {
	f, _, svc := newAuthFixture(t)
	ctx := context.Background()

	t.Run("wrong code", func(t *testing.T) {
		if _, err := svc.RequestOTP(ctx, "09121230001"); err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}
		_, err := svc.VerifyOTP(ctx, "09121230001", "99999", domain.RoleStudent)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("kind = %v, want validation", apperr.KindOf(err))
		}
	})

	t.Run("no pending code", func(t *testing.T) {
		_, err := svc.VerifyOTP(ctx, "09121230002", "11111", domain.RoleStudent)
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("kind = %v, want not-found", apperr.KindOf(err))
		}
	})

	t.Run("operator must exist", func(t *testing.T) {
		if _, err := svc.RequestOTP(ctx, "09121230003"); err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}
		_, err := svc.VerifyOTP(ctx, "09121230003", "11111", domain.RoleOperator)
		if apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("kind = %v, want not-found", apperr.KindOf(err))
		}
	})

	t.Run("role mismatch", func(t *testing.T) {
		f.user(t, "09121230004")
		if _, err := svc.RequestOTP(ctx, "09121230004"); err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}
		_, err := svc.VerifyOTP(ctx, "09121230004", "11111", domain.RoleOperator)
		if apperr.KindOf(err) != apperr.KindPermission {
			t.Errorf("kind = %v, want permission", apperr.KindOf(err))
		}
	})
}

func TestTokenRoundTrip(t *testing.T) {
	_, _, svc := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.RequestOTP(ctx, "09121234567"); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	pair, err := svc.VerifyOTP(ctx, "09121234567", "11111", domain.RoleStudent)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}

	user, err := svc.Authenticate(ctx, pair.Access)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.PhoneNumber != "09121234567" {
		t.Errorf("authenticated phone = %q", user.PhoneNumber)
	}

	// Tokens are not interchangeable across endpoints.
	if _, err := svc.Authenticate(ctx, pair.Refresh); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("refresh as access: kind = %v, want unauthorized", apperr.KindOf(err))
	}
	if _, err := svc.Refresh(ctx, pair.Access); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("access as refresh: kind = %v, want unauthorized", apperr.KindOf(err))
	}

	refreshed, err := svc.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := svc.Authenticate(ctx, refreshed.Access); err != nil {
		t.Fatalf("Authenticate refreshed access: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "not-a-token"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("garbage token: kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

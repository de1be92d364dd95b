package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/deebajee2009/OnlineExamBackEnd/internal/clients/redis"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/pkg/apperr"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/utils"
)

const otpTTL = 5 * time.Minute

// SMSSender delivers a login code. Production wires a gateway; development
// logs the code instead.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

type logSMSSender struct {
	log *logger.Logger
}

func NewLogSMSSender(baseLog *logger.Logger) SMSSender {
	return &logSMSSender{log: baseLog.With("service", "LogSMSSender")}
}

func (s *logSMSSender) Send(_ context.Context, phone, message string) error {
	s.log.Info("SMS (log only)", "phone_number", phone, "message", message)
	return nil
}

type OTPRequest struct {
	SentBefore    bool `json:"is_send_before"`
	RemainingTime int  `json:"remaining_time"`
}

type TokenPair struct {
	Access      string          `json:"access"`
	Refresh     string          `json:"refresh"`
	Role        domain.UserRole `json:"role"`
	PhoneNumber string          `json:"phone_number"`
}

type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// DebugOTP pins every issued code to 11111 for local work.
	DebugOTP bool
}

func LoadAuthConfig(log *logger.Logger) AuthConfig {
	return AuthConfig{
		Secret:     utils.GetEnv("JWT_SECRET", "dev-secret-do-not-use", log),
		AccessTTL:  utils.GetEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute, log),
		RefreshTTL: utils.GetEnvAsDuration("JWT_REFRESH_TTL", 30*24*time.Hour, log),
		DebugOTP:   utils.GetEnv("OTP_DEBUG", "false", log) == "true",
	}
}

type AuthService interface {
	// RequestOTP issues a login code for the phone number. A pending code is
	// never replaced: the caller gets its remaining lifetime instead.
	RequestOTP(ctx context.Context, phone string) (*OTPRequest, error)
	// VerifyOTP confirms the code, creating the student account on first
	// login, and returns a token pair.
	VerifyOTP(ctx context.Context, phone, code string, role domain.UserRole) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Authenticate resolves an access token to its user.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type authService struct {
	userRepo repos.UserRepo
	otpStore redisclient.OTPStore
	sms      SMSSender
	cfg      AuthConfig
	log      *logger.Logger
}

func NewAuthService(
	userRepo repos.UserRepo,
	otpStore redisclient.OTPStore,
	sms SMSSender,
	cfg AuthConfig,
	baseLog *logger.Logger,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		userRepo: userRepo,
		otpStore: otpStore,
		sms:      sms,
		cfg:      cfg,
		log:      serviceLog,
	}
}

func (s *authService) RequestOTP(ctx context.Context, phone string) (*OTPRequest, error) {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return nil, apperr.Validation("invalid_phone_number", "invalid phone number format")
	}

	code := s.generateCode()
	issue, err := s.otpStore.Issue(ctx, normalized, code, otpTTL)
	if err != nil {
		return nil, apperr.Internal("otp_issue_failed", err)
	}

	if !issue.SentBefore {
		message := fmt.Sprintf("Your login code: %s", issue.Code)
		if err := s.sms.Send(ctx, normalized, message); err != nil {
			return nil, apperr.Internal("sms_send_failed", err)
		}
	}

	return &OTPRequest{
		SentBefore:    issue.SentBefore,
		RemainingTime: int(issue.RemainingTime.Seconds()),
	}, nil
}

func (s *authService) generateCode() string {
	if s.cfg.DebugOTP {
		return "11111"
	}
	return fmt.Sprintf("%05d", 10000+rand.Intn(90000-10000))
}

func (s *authService) VerifyOTP(ctx context.Context, phone, code string, role domain.UserRole) (*TokenPair, error) {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return nil, apperr.Validation("invalid_phone_number", "invalid phone number format")
	}

	if err := s.otpStore.Confirm(ctx, normalized, code); err != nil {
		switch {
		case errors.Is(err, redisclient.ErrOTPExpired):
			return nil, apperr.NotFound("otp_expired", "the login code has expired")
		case errors.Is(err, redisclient.ErrOTPMismatch):
			return nil, apperr.Validation("otp_invalid", "the submitted code is invalid")
		default:
			return nil, apperr.Internal("otp_confirm_failed", err)
		}
	}

	user, err := s.resolveUser(ctx, normalized, role)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

// resolveUser maps a confirmed phone number to an account. Students are
// created on first login; operator accounts are provisioned out of band.
func (s *authService) resolveUser(ctx context.Context, phone string, role domain.UserRole) (*domain.User, error) {
	user, err := s.userRepo.GetByPhone(ctx, nil, phone)
	if err == nil {
		if user.Role != role {
			return nil, apperr.Permission("role_mismatch", "phone number does not match the requested role")
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("user_load_failed", err)
	}

	if role != domain.RoleStudent {
		return nil, apperr.NotFound("operator_not_found", "operator account does not exist")
	}
	user, err = s.userRepo.Create(ctx, nil, &domain.User{PhoneNumber: phone, Role: domain.RoleStudent})
	if err != nil {
		return nil, apperr.Internal("user_create_failed", err)
	}
	s.log.Info("Student account created", "user_id", user.ID, "phone_number", phone)
	return user, nil
}

type tokenClaims struct {
	PhoneNumber string          `json:"phone_number"`
	Role        domain.UserRole `json:"role"`
	TokenType   string          `json:"token_type"`
	jwt.RegisteredClaims
}

func (s *authService) issueTokens(user *domain.User) (*TokenPair, error) {
	access, err := s.signToken(user, "access", s.cfg.AccessTTL)
	if err != nil {
		return nil, apperr.Internal("token_sign_failed", err)
	}
	refresh, err := s.signToken(user, "refresh", s.cfg.RefreshTTL)
	if err != nil {
		return nil, apperr.Internal("token_sign_failed", err)
	}
	return &TokenPair{
		Access:      access,
		Refresh:     refresh,
		Role:        user.Role,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

func (s *authService) signToken(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *authService) parseToken(raw, wantType string) (*tokenClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("token_invalid", "token is invalid or expired")
	}
	if claims.TokenType != wantType {
		return nil, apperr.Unauthorized("token_wrong_type", "expected a %s token", wantType)
	}
	return &claims, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByPhone(ctx, nil, claims.PhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("user_not_found", "account no longer exists")
		}
		return nil, apperr.Internal("user_load_failed", err)
	}
	return s.issueTokens(user)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.parseToken(accessToken, "access")
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByPhone(ctx, nil, claims.PhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("user_not_found", "account no longer exists")
		}
		return nil, apperr.Internal("user_load_failed", err)
	}
	return user, nil
}

// Package auth issues and verifies the first-party API tokens that protect
// the gateway's HTTP surface. Profiles sign in with email and password and
// receive a short-lived HS256 JWT whose subject is the profile id.
package auth

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
	"github.com/botwire/go-wa-gateway/profiles"
)

const defaultTokenExpiry = 24 * time.Hour

// Service provides sign-in and token verification.
type Service struct {
	profiles    profiles.Repo
	secret      []byte
	tokenExpiry time.Duration
	nowTime     func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithTokenExpiry overrides the default token lifetime.
func WithTokenExpiry(expiry time.Duration) ServiceOption {
	return func(s *Service) {
		s.tokenExpiry = expiry
	}
}

func NewService(profileRepo profiles.Repo, secret string, options ...ServiceOption) (*Service, error) {
	if profileRepo == nil {
		return nil, errors.New("[NewService] profiles repo is required")
	}
	if secret == "" {
		return nil, errors.New("[NewService] signing secret is required")
	}

	s := &Service{
		profiles:    profileRepo,
		secret:      []byte(secret),
		tokenExpiry: defaultTokenExpiry,
		nowTime:     time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// SignIn authenticates a profile by email and password and returns a signed
// token plus the profile. Unknown emails and wrong passwords are not
// distinguished for the caller.
func (s *Service) SignIn(email, password string) (string, *profiles.Profile, error) {
	profile, err := s.profiles.GetByEmail(email)
	if err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if !profiles.CheckPasswordHash(password, profile.PasswordHash) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	claims := jwtlib.MapClaims{
		"sub":   profile.ID,
		"email": profile.Email,
		"iat":   s.nowTime().Unix(),
		"exp":   s.nowTime().Add(s.tokenExpiry).Unix(),
		"jti":   uuid.New().String(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "[Service SignIn] sign token")
	}
	return token, profile, nil
}

// Verify parses a token and returns the profile id it was issued for.
func (s *Service) Verify(tokenString string) (string, error) {
	token, err := jwtlib.Parse(tokenString, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return s.nowTime() }))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", apperrors.ErrInvalidToken
	}
	return subject, nil
}

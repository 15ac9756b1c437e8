package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// DefaultTokenTTL is used when no lifetime is configured.
const DefaultTokenTTL = 30 * time.Minute

// ErrTokenInvalid covers every verification failure: bad signature, expiry,
// malformed claims. Callers must not learn which one occurred.
var ErrTokenInvalid = errors.New("token invalid")

// TokenConfig is the immutable signing configuration, built once at startup.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Logger *logrus.Logger
}

// TokenService issues and verifies HS256 access tokens whose subject is the user's email.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	logger *logrus.Logger
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &TokenService{
		secret: secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		logger: cfg.Logger,
	}, nil
}

// TTL returns the lifetime applied to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject that expires at now+TTL.
func (s *TokenService) Issue(subject string, now time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("token subject is required")
	}
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry against now and returns the subject.
// A token is valid only while now is strictly before its expiry.
func (s *TokenService) Verify(tokenString string, now time.Time) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.logger.WithField("reason", rejectReason(err)).Debugf("token rejected: %v", err)
		return "", ErrTokenInvalid
	}
	if !token.Valid {
		s.logger.WithField("reason", "invalid").Debug("token rejected")
		return "", ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		s.logger.WithField("reason", "missing_subject").Debug("token rejected")
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing_claim"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "issuer"
	default:
		return "invalid"
	}
}

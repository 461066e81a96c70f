package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims notifyhub reads from an access token. The subject is
// the user id.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// UserID returns the subject of the token.
func (c Claims) UserID() string { return c.Subject }

// Service signs and verifies tokens with one HMAC key.
type Service struct {
	key    []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &Service{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		parser: jwt.NewParser(opts...),
		now:    time.Now,
	}, nil
}

// Generate issues a token for userID that expires after the configured TTL.
func (s *Service) Generate(userID, username string) (string, error) {
	return s.GenerateWithTTL(userID, username, s.ttl)
}

// GenerateWithTTL issues a token with an explicit lifetime. A negative ttl
// yields an already expired token, which is handy in tests.
func (s *Service) GenerateWithTTL(userID, username string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now.Add(min(ttl, 0))),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies token and returns its claims. Errors are one of
// ErrMissingToken, ErrMalformedToken, ErrExpiredToken, ErrInvalidSignature
// or ErrInvalidToken, joined with the library error.
func (s *Service) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, errors.Join(ErrInvalidToken, ErrMissingSubject)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.Join(ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return errors.Join(ErrInvalidSignature, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}

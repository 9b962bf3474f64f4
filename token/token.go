package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskflow/taskflow-backend/model"
)

var (
	// ErrExpired means the token was well-formed and correctly signed but
	// is past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers malformed tokens and bad signatures.
	ErrInvalid = errors.New("invalid token")
)

// Claims carried by every bearer token.
type Claims struct {
	UserID   string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256-signed bearer tokens. Expiry is the only
// lifetime bound; there is no revocation.
type Service struct {
	secret []byte
	ttl    time.Duration
}

const defaultTTL = 24 * time.Hour

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), ttl: defaultTTL}
}

// NewServiceWithTTL overrides the lifetime, mainly so tests can mint
// already-expired tokens.
func NewServiceWithTTL(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user. Provider defaults to local when the
// record predates the provider field.
func (s *Service) Issue(user *model.User) (string, error) {
	provider := user.Provider
	if provider == "" {
		provider = model.ProviderLocal
	}

	now := time.Now()
	claims := &Claims{
		UserID:   user.ID.Hex(),
		Name:     user.Name,
		Email:    user.Email,
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify validates signature and expiry and returns the decoded claims.
// Expired tokens are reported distinctly from malformed or forged ones.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

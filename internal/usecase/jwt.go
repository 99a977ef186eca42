package usecase

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobin-logidots/auth-service/config"
	"github.com/jobin-logidots/auth-service/internal/domain"
)

// AccessClaims prove identity on resource requests. SessionID ties the
// token to the login instance that minted it.
type AccessClaims struct {
	UserID    uint        `json:"uid"`
	Role      domain.Role `json:"role"`
	SessionID uint        `json:"session_id"`
	jwt.RegisteredClaims
}

// RefreshClaims are exchanged for a new token pair. Hash must still
// match the live session record, which is what makes refresh tokens
// revocable even though verification itself is stateless.
type RefreshClaims struct {
	SessionID uint   `json:"session_id"`
	Hash      string `json:"hash"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the two token shapes with distinct
// secrets; an access token can never pass as a refresh token or the
// other way around.
type TokenCodec interface {
	SignAccessToken(userID uint, role domain.Role, sessionID uint) (token string, expires time.Time, err error)
	SignRefreshToken(sessionID uint, hash string) (string, error)
	ParseAccessToken(token string) (*AccessClaims, error)
	ParseRefreshToken(token string) (*RefreshClaims, error)
}

type jwtCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewJWTCodec(cfg *config.Config) (TokenCodec, error) {
	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("access and refresh secrets required")
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &jwtCodec{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}, nil
}

func (c *jwtCodec) SignAccessToken(userID uint, role domain.Role, sessionID uint) (string, time.Time, error) {
	now := time.Now().UTC()
	expires := now.Add(c.accessTTL)
	claims := AccessClaims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

func (c *jwtCodec) SignRefreshToken(sessionID uint, hash string) (string, error) {
	now := time.Now().UTC()
	claims := RefreshClaims{
		SessionID: sessionID,
		Hash:      hash,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
}

func (c *jwtCodec) ParseAccessToken(token string) (*AccessClaims, error) {
	claims := new(AccessClaims)
	if err := c.parse(token, claims, c.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *jwtCodec) ParseRefreshToken(token string) (*RefreshClaims, error) {
	claims := new(RefreshClaims)
	if err := c.parse(token, claims, c.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *jwtCodec) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

package tokenverify

import (
	"github.com/jobin-logidots/auth-service/internal/domain"
	"github.com/jobin-logidots/auth-service/internal/usecase"
)

// Parser is the slice of the token codec needed here.
type Parser interface {
	ParseAccessToken(token string) (*usecase.AccessClaims, error)
}

type Result struct {
	UserID    uint        `json:"user_id"`
	Role      domain.Role `json:"role"`
	SessionID uint        `json:"session_id"`
}

// Verify checks an access token without touching any store. Other
// services use this (over NATS) to authenticate requests locally.
func Verify(parser Parser, token string) (*Result, error) {
	if parser == nil {
		return nil, usecase.ErrInvalidToken
	}
	claims, err := parser.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, usecase.ErrInvalidToken
	}
	return &Result{UserID: claims.UserID, Role: claims.Role, SessionID: claims.SessionID}, nil
}

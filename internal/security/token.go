package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeDocumentDownload TokenType = "document_download"
)

// DocumentClaims authorizes the download of one stored document.
type DocumentClaims struct {
	Key       string    `json:"key"`
	Type      TokenType `json:"type"`
	RequestID string    `json:"request_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateDownloadToken(key, requestID string, ttl time.Duration) (string, error)
	ValidateDownloadToken(tokenString string) (*DocumentClaims, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
	}
}

func (m *tokenManager) GenerateDownloadToken(key, requestID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := DocumentClaims{
		Key:       key,
		Type:      TokenTypeDocumentDownload,
		RequestID: requestID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "membership-service",
			Audience:  jwt.ClaimStrings{"document-download"},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateDownloadToken(tokenString string) (*DocumentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DocumentClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithAudience("document-download"))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*DocumentClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeDocumentDownload || claims.Key == "" {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

package api

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oncalldoc/invoice-api/models"
)

// TokenTTL is how long an issued bearer token stays valid. There is no
// refresh mechanism; clients log in again after expiry.
const TokenTTL = 24 * time.Hour

// ErrInvalidToken covers malformed, unsigned, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Session is the authenticated identity for one request. It is created when a
// token is verified and travels in the request context; nothing about it is
// global.
type Session struct {
	UserID   string
	Username string
	Role     models.Role
}

type sessionKey struct{}

// NewContext returns a copy of ctx carrying the session.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by the auth middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// SignToken issues an HS256 token over {id, username, role} expiring after
// TokenTTL.
func SignToken(s Session, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"id":       s.UserID,
		"username": s.Username,
		"role":     string(s.Role),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken parses and validates a bearer token and rebuilds the session it
// carries.
func VerifyToken(tokenString string, secret []byte) (Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if id == "" || username == "" {
		return Session{}, ErrInvalidToken
	}

	return Session{UserID: id, Username: username, Role: models.Role(role)}, nil
}

package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
	"github.com/jengzang/healthtwin-backend/pkg/response"
)

const (
	userIDKey = "user_id"
	issuer    = "healthtwin"

	// GuestTokenTTL is the lifetime of minted guest tokens.
	GuestTokenTTL = 30 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Auth verifies and mints HS256 bearer tokens whose subject is the user id.
type Auth struct {
	secret []byte
	log    *logger.Logger
	now    func() time.Time
}

// NewAuth creates an Auth from a shared secret.
func NewAuth(secret string, log *logger.Logger) *Auth {
	if log == nil {
		log = logger.Nop()
	}
	return &Auth{secret: []byte(secret), log: log.With("middleware", "Auth"), now: time.Now}
}

// Issue signs a token for userID valid for ttl.
func (a *Auth) Issue(userID string, ttl time.Duration) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// IssueGuest mints a token for a new random user id.
func (a *Auth) IssueGuest() (userID, token string, exp time.Time, err error) {
	userID = uuid.NewString()
	token, exp, err = a.Issue(userID, GuestTokenTTL)
	return userID, token, exp, err
}

// Verify parses token and returns its subject.
func (a *Auth) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// user id on the context.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing or invalid token")
			return
		}
		userID, err := a.Verify(token)
		if err != nil {
			a.log.Debug("Rejected token", "error", err)
			response.Unauthorized(c, err.Error())
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// UserID returns the authenticated user id, empty before RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

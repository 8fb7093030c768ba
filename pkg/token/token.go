package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleType set member role
type RoleType string

const (
	// RoleAdmin is the admin role
	RoleAdmin RoleType = "admin"
	// RoleMember is the member role
	RoleMember RoleType = "member"
)

// ErrInvalidToken returned for any credential that does not verify
var ErrInvalidToken = errors.New("invalid token")

// Claims structure for custom claims in JWT
type Claims struct {
	MemberID string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 credentials
type Manager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewManager create a Manager, expiration defaults to one hour
func NewManager(secret string, expiration time.Duration, issuer string) *Manager {
	if expiration <= 0 {
		expiration = 60 * time.Minute
	}
	return &Manager{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
	}
}

// Generate signs a credential for memberID
func (m *Manager) Generate(memberID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		MemberID: memberID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates signature and expiry and returns the claims
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimPrefix(strings.TrimSpace(tokenStr), "Bearer ")

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.MemberID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyCredential decodes tokenStr into the member id it was issued for
func (m *Manager) VerifyCredential(ctx context.Context, tokenStr string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.MemberID, nil
}

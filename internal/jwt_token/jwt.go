package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"onboarding/internal/onboarding/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// handoffAudienceSuffix keeps handoff references from being accepted as
// session tokens and vice versa.
const handoffAudienceSuffix = "/identity-handoff"

// callbackAudienceSuffix scopes tokens the identity provider signs for its
// verdict webhook.
const callbackAudienceSuffix = "/identity-callback"

// SessionClaims are carried by the bearer token of an onboarding session.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// HandoffClaims are carried by the identity handoff reference given to the
// identity provider.
type HandoffClaims struct {
	SessionID string `json:"sid"`
	Mode      string `json:"mode"`
	jwt.RegisteredClaims
}

// CallbackClaims bind a provider verdict to the handoff reference it is
// about. They are signed with the provider's shared secret, never the
// session signing key.
type CallbackClaims struct {
	Reference string `json:"ref"`
	Verified  bool   `json:"verified"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

func (s *JWTService) registered(audience string, expiresIn time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		Audience:  []string{audience},
		ID:        uuid.NewString(),
	}
}

// GenerateSessionToken signs a bearer token for sessionID.
func (s *JWTService) GenerateSessionToken(sessionID id.SessionID, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		SessionID:        sessionID.String(),
		RegisteredClaims: s.registered(s.audience, expiresIn),
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GenerateHandoffToken signs the reference handed to the identity provider.
func (s *JWTService) GenerateHandoffToken(sessionID id.SessionID, mode models.HandoffMode, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, HandoffClaims{
		SessionID:        sessionID.String(),
		Mode:             string(mode),
		RegisteredClaims: s.registered(s.audience+handoffAudienceSuffix, expiresIn),
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, audience string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return nil
}

// ValidateToken checks a session token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims, s.audience); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateSessionToken returns the session a bearer token was issued for.
func (s *JWTService) ValidateSessionToken(tokenString string) (id.SessionID, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return id.SessionID{}, err
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return id.SessionID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return sessionID, nil
}

// ValidateHandoffToken checks an identity handoff reference.
func (s *JWTService) ValidateHandoffToken(tokenString string) (*HandoffClaims, error) {
	claims := &HandoffClaims{}
	if err := s.parse(tokenString, claims, s.audience+handoffAudienceSuffix); err != nil {
		return nil, err
	}
	if _, err := id.ParseSessionID(claims.SessionID); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// GenerateCallbackToken signs a provider verdict. Used by the provider side
// of the webhook and by tests.
func (s *JWTService) GenerateCallbackToken(outcome models.IdentityOutcome, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, CallbackClaims{
		Reference:        outcome.Reference,
		Verified:         outcome.Verified,
		RegisteredClaims: s.registered(s.audience+callbackAudienceSuffix, expiresIn),
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateCallbackToken checks a token presented on the verdict webhook.
func (s *JWTService) ValidateCallbackToken(tokenString string) (*CallbackClaims, error) {
	claims := &CallbackClaims{}
	if err := s.parse(tokenString, claims, s.audience+callbackAudienceSuffix); err != nil {
		return nil, err
	}
	if claims.Reference == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

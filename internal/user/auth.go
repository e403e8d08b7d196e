package user

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "eggcelent"

type CustomClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Tokens signs and checks the integrity token stored with a session.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: now}
}

func (t *Tokens) GenerateJWT(sessionID string) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("JWT secret is not set")
	}

	now := t.now()
	claims := CustomClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) ParseJWT(tokenStr string) (*CustomClaims, error) {
	if len(t.secret) == 0 {
		return nil, errors.New("JWT secret is not set")
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return t.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Verify reports whether s carries a valid token issued for it.
func (t *Tokens) Verify(s Session) error {
	claims, err := t.ParseJWT(s.Token)
	if err != nil {
		return err
	}
	if claims.SessionID != s.ID {
		return ErrInvalidToken
	}
	return nil
}

var wordStart = regexp.MustCompile(`\b\w`)

// NameFromEmail turns "jane.doe_x@mail.com" into "Jane Doe X".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	return wordStart.ReplaceAllStringFunc(local, strings.ToUpper)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateLogin checks the login form without starting a session.
func ValidateLogin(email, password string) error {
	if blank(email) || blank(password) {
		return ErrMissingFields
	}
	return validatePassword(password)
}

// ValidateRegister checks the registration form without starting a session.
func ValidateRegister(p RegisterParams) error {
	if blank(p.Name) || blank(p.Email) || blank(p.Password) {
		return ErrMissingRequiredFields
	}
	if err := validatePassword(p.Password); err != nil {
		return err
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

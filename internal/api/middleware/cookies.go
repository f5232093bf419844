package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fsrp/document-portal/internal/core/domain"
)

const (
	SessionCookie    = "portal_session"
	PersistentCookie = "portal_persist"

	cookieIssuer = "fsrp-document-portal"
)

var errAreaMismatch = errors.New("cookie issued for another area")

// areaClaims bind a storage area id to the area it addresses.
type areaClaims struct {
	Area string `json:"area"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies storage-area cookies as HS256 tokens.
type CookieCodec struct {
	secret        []byte
	secure        bool
	persistentTTL time.Duration
}

// NewCookieCodec creates a CookieCodec. persistentTTL is the lifetime of the
// persistent cookie; the session cookie has no expiry.
func NewCookieCodec(secret string, secure bool, persistentTTL time.Duration) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), secure: secure, persistentTTL: persistentTTL}
}

// NewID returns a fresh area id.
func NewID() string {
	return uuid.NewString()
}

func (cc *CookieCodec) sign(area domain.Area, id string, now time.Time) (string, error) {
	claims := areaClaims{
		Area: string(area),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id,
			Issuer:   cookieIssuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if area == domain.AreaPersistent && cc.persistentTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(cc.persistentTTL))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s cookie: %w", area, err)
	}
	return token, nil
}

// Parse returns the area id carried by a cookie value.
func (cc *CookieCodec) Parse(area domain.Area, value string) (string, error) {
	claims := &areaClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return cc.secret, nil
	}, jwt.WithIssuer(cookieIssuer))
	if err != nil || !tkn.Valid {
		return "", fmt.Errorf("parse %s cookie: %w", area, err)
	}
	if claims.Area != string(area) {
		return "", errAreaMismatch
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("parse %s cookie: %w", area, err)
	}
	return claims.Subject, nil
}

// Cookie builds the http.Cookie addressing an area.
func (cc *CookieCodec) Cookie(area domain.Area, id string, now time.Time) (*http.Cookie, error) {
	value, err := cc.sign(area, id, now)
	if err != nil {
		return nil, err
	}
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if area == domain.AreaPersistent {
		c.Name = PersistentCookie
		if cc.persistentTTL > 0 {
			c.Expires = now.Add(cc.persistentTTL)
			c.MaxAge = int(cc.persistentTTL.Seconds())
		}
	}
	return c, nil
}

package handoff

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"slot-bot/types"
)

var ErrInvalidToken = errors.New("handoff: invalid state token")

// State is what the picker link carries back to the bot.
type State struct {
	ChatID    int64
	ChatKind  types.ChatKind
	ServiceID int64
	Locale    string
}

type stateClaims struct {
	ChatID    int64  `json:"cid"`
	ChatKind  string `json:"ck"`
	ServiceID int64  `json:"sid"`
	Locale    string `json:"loc,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 state tokens for the calendar picker.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the signer's clock; used by tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

func (s *Signer) Sign(st State) (string, error) {
	now := s.now()
	claims := stateClaims{
		ChatID:    st.ChatID,
		ChatKind:  string(st.ChatKind),
		ServiceID: st.ServiceID,
		Locale:    st.Locale,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("handoff: sign state: %w", err)
	}
	return token, nil
}

// Verify rejects forged, expired and malformed tokens with ErrInvalidToken.
func (s *Signer) Verify(token string) (State, error) {
	var claims stateClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ChatID == 0 {
		return State{}, fmt.Errorf("%w: no chat", ErrInvalidToken)
	}
	return State{
		ChatID:    claims.ChatID,
		ChatKind:  types.ChatKind(claims.ChatKind),
		ServiceID: claims.ServiceID,
		Locale:    claims.Locale,
	}, nil
}

// PickerURL appends a signed token for st to the calendar base URL.
func (s *Signer) PickerURL(base string, st State) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("handoff: calendar url: %w", err)
	}
	token, err := s.Sign(st)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

package core

import (
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	NoticeSuccess = "success"
	NoticeError   = "error"

	// FlashParam is the query parameter carrying a notice token across a redirect.
	FlashParam = "flash"
)

type Notice struct {
	Category string
	Message  string
}

type flashClaims struct {
	Category string `json:"cat"`
	Message  string `json:"msg"`
	jwt.RegisteredClaims
}

// Flasher issues signed one-shot notice tokens and remembers which ones were
// already shown until they expire.
type Flasher struct {
	key []byte
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	consumed map[string]time.Time
}

func NewFlasher(secret string, ttl time.Duration) *Flasher {
	return &Flasher{
		key:      []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		consumed: make(map[string]time.Time),
	}
}

func (f *Flasher) Issue(n Notice) (string, error) {
	now := f.now()
	claims := flashClaims{
		Category: n.Category,
		Message:  n.Message,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(f.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.key)
}

// Consume returns the notice in token exactly once. Invalid, expired and
// replayed tokens yield false.
func (f *Flasher) Consume(token string) (Notice, bool) {
	if token == "" {
		return Notice{}, false
	}

	claims := &flashClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, f.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(f.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return Notice{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pruneLocked()
	if _, seen := f.consumed[claims.ID]; seen {
		return Notice{}, false
	}
	f.consumed[claims.ID] = claims.ExpiresAt.Time

	return Notice{Category: claims.Category, Message: claims.Message}, true
}

// RedirectURL appends the notice token to target.
func (f *Flasher) RedirectURL(target string, n Notice) (string, error) {
	token, err := f.Issue(n)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(FlashParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (f *Flasher) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return f.key, nil
}

func (f *Flasher) pruneLocked() {
	now := f.now()
	for id, exp := range f.consumed {
		if now.After(exp) {
			delete(f.consumed, id)
		}
	}
}

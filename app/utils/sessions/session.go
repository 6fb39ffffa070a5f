package sessions

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "storefront-session"

	userIDSessionKey  = "userID"
	cartKeySessionKey = "cartKey"
)

// SessionStore maps a browser to the signed-in user and to its cart key.
// The user id is written by the authentication collaborator.
type SessionStore interface {
	GetUserID(r *http.Request) string
	SetUserID(w http.ResponseWriter, r *http.Request, userID string) error

	GetCartKey(r *http.Request) string
	EnsureCartKey(w http.ResponseWriter, r *http.Request) (string, error)

	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession always returns a usable session. A cookie that fails to
// decode is replaced by a fresh one.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		log.Printf("CookieSessionStore: discarding unreadable session: %v", err)
	}
	return session
}

func (c *CookieSessionStore) GetUserID(r *http.Request) string {
	userID, _ := c.getSession(r).Values[userIDSessionKey].(string)
	return userID
}

func (c *CookieSessionStore) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	session := c.getSession(r)
	session.Values[userIDSessionKey] = userID
	return session.Save(r, w)
}

func (c *CookieSessionStore) GetCartKey(r *http.Request) string {
	cartKey, _ := c.getSession(r).Values[cartKeySessionKey].(string)
	return cartKey
}

// EnsureCartKey returns the cart key of the session, minting and saving a
// new one on first use.
func (c *CookieSessionStore) EnsureCartKey(w http.ResponseWriter, r *http.Request) (string, error) {
	session := c.getSession(r)
	if cartKey, ok := session.Values[cartKeySessionKey].(string); ok && cartKey != "" {
		return cartKey, nil
	}

	cartKey := uuid.New().String()
	session.Values[cartKeySessionKey] = cartKey
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return cartKey, nil
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

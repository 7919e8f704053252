package sessions

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	SessionName = "storefront_session"
	userIDKey   = "user_id"
)

var Store *sessions.CookieStore

// Init builds the cookie store from the configured key pair. Must run
// before the router is built.
func Init(authKey, encKey []byte) {
	Store = sessions.NewCookieStore(authKey, encKey)
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

type SessionStore interface {
	SetUserID(w http.ResponseWriter, r *http.Request, userID string) error
	GetUserID(r *http.Request) (string, error)
	Clear(w http.ResponseWriter, r *http.Request) error
}

type cookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore() SessionStore {
	return &cookieSessionStore{store: Store}
}

func (s *cookieSessionStore) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		session, _ = s.store.New(r, SessionName)
	}
	session.Values[userIDKey] = userID
	return session.Save(r, w)
}

func (s *cookieSessionStore) GetUserID(r *http.Request) (string, error) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return "", err
	}
	userID, _ := session.Values[userIDKey].(string)
	return userID, nil
}

func (s *cookieSessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return err
	}
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

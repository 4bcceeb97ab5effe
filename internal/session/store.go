package session

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/a-manpathan/kata-frontend/internal/domain"
)

// Listener is notified whenever the identity changes. ok is false once the
// session has been cleared by logout.
type Listener func(user domain.User, ok bool)

// Store owns the current credential and identity for the whole process. It is
// the only shared state between otherwise independent component trees, so all
// access goes through its mutex and writes happen only via Login and Logout.
type Store struct {
	mu            sync.RWMutex
	token         string
	user          domain.User
	authenticated bool

	creds   CredentialStore
	log     *logrus.Logger
	subs    map[int]Listener
	nextSub int
}

// NewStore builds the store and hydrates it from the credential store so a
// restart resumes the previous session without re-authenticating. A missing or
// unreadable saved session starts the process logged out.
func NewStore(creds CredentialStore, logger *logrus.Logger) *Store {
	s := &Store{
		creds: creds,
		log:   logger,
		subs:  make(map[int]Listener),
	}

	saved, ok, err := creds.Load()
	if err != nil {
		logger.Warnf("Session: Failed to restore saved session, starting logged out: %v", err)
		return s
	}
	if ok && saved.Token != "" {
		s.token = saved.Token
		s.user = saved.User
		s.authenticated = true
		logger.Infof("Session: Restored session for %s (role %s)", saved.User.Email, saved.User.Role)
	}
	return s
}

// Login replaces the credential and identity wholesale and persists them.
// A persistence failure is logged but does not fail the login; the in-memory
// session is already usable.
func (s *Store) Login(token string, user domain.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.authenticated = true
	s.mu.Unlock()

	if err := s.creds.Save(Saved{Token: token, User: user}); err != nil {
		s.log.Warnf("Session: Failed to persist session for %s: %v", user.Email, err)
	}
	s.log.Infof("Session: Logged in as %s (role %s)", user.Email, user.Role)
	s.notify()
}

// Logout clears the credential and identity from memory and durable storage.
// It is safe to call at any time, including when already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	wasLoggedIn := s.authenticated
	s.token = ""
	s.user = domain.User{}
	s.authenticated = false
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		s.log.Warnf("Session: Failed to clear persisted session: %v", err)
	}
	if wasLoggedIn {
		s.log.Info("Session: Logged out")
	}
	s.notify()
}

// Current returns the identity, with ok reporting whether anyone is logged in.
func (s *Store) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.authenticated
}

// Token returns the current bearer credential, or "" when logged out. The
// gateway reads this before every outbound request.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers a listener for identity changes and returns a function
// that removes it. Listeners are invoked after the change is committed.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	user, ok := s.user, s.authenticated
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(user, ok)
	}
}

// Package session holds the identity of the operator acting on the store.
package session

import (
	"errors"
	"sync"

	"bodega-pos/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNoSession      = errors.New("no operator session")
	ErrInvalidProfile = errors.New("operator profile needs a UUID id and a known role")
)

// Profile is the cached view of the signed-in operator.
type Profile struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
}

func ProfileOf(u *model.UserProfile) Profile {
	return Profile{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}

// Session is empty until Load and again after Clear. It is safe for
// concurrent use.
type Session struct {
	mu      sync.RWMutex
	profile *Profile
}

func New() *Session {
	return &Session{}
}

// For returns a session already loaded with the user.
func For(u *model.UserProfile) (*Session, error) {
	s := New()
	if err := s.Load(ProfileOf(u)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Load(p Profile) error {
	if id, err := uuid.Parse(p.ID); err != nil || id == uuid.Nil || !p.Role.Valid() {
		return ErrInvalidProfile
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	return nil
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
}

func (s *Session) Current() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// OperatorID is the identifier recorded on every ledger write.
func (s *Session) OperatorID() (string, error) {
	p, ok := s.Current()
	if !ok {
		return "", ErrNoSession
	}
	return p.ID, nil
}

func (s *Session) IsAdmin() bool {
	p, ok := s.Current()
	return ok && p.Role == model.RoleAdmin
}

// Can checks the static privilege table of the loaded role.
func (s *Session) Can(privilege string) bool {
	p, ok := s.Current()
	if !ok {
		return false
	}
	for _, code := range model.PrivilegesFor(p.Role) {
		if code == privilege {
			return true
		}
	}
	return false
}

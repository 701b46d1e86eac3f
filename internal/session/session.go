// Package session holds the client-side login state: a bearer token and the
// JSON-encoded profile of the signed-in user, persisted under two keys.
//
// The pair is read on every authenticated request and every page render,
// written after a successful login or registration, and cleared on logout or
// when a backend answers 401. Presence of both values is the only notion of
// "signed in" the clients have; the token is never validated locally.
package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Storage keys
const (
	TokenKey = "token"
	UserKey  = "user"
)

// DefaultDisplayName is shown when the stored profile has neither name nor email
const DefaultDisplayName = "User"

// Session is the pair of locally persisted values representing login state
type Session struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

// Profile is the subset of the stored user JSON the clients care about
type Profile struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Store persists a Session
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// New builds a Session from a token and any JSON-encodable user value
func New(token string, user any) (Session, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode user profile: %w", err)
	}
	return Session{Token: token, User: string(data)}, nil
}

// Authenticated reports whether both values are present
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != ""
}

// Profile decodes the stored user JSON. Malformed JSON yields an empty Profile.
func (s Session) Profile() Profile {
	var p Profile
	if s.User == "" {
		return p
	}
	if err := json.Unmarshal([]byte(s.User), &p); err != nil {
		return Profile{}
	}
	return p
}

// DisplayName prefers the profile name, then the email, then DefaultDisplayName
func (s Session) DisplayName() string {
	p := s.Profile()
	switch {
	case p.Name != "":
		return p.Name
	case p.Email != "":
		return p.Email
	default:
		return DefaultDisplayName
	}
}

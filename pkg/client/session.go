package client

import (
	"encoding/json"
	"sync"
)

// Durable storage keys. The auth store key holds the serialized profile and
// authentication flag alongside the raw token keys.
const (
	StorageKeyAccessToken  = "ACCESS_TOKEN"
	StorageKeyRefreshToken = "REFRESH_TOKEN"
	StorageKeyAuthStore    = "authStore"
)

// UserProfile is the authenticated user's profile as held by the session.
type UserProfile struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Role        string  `json:"role"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	IsActive    bool    `json:"isActive"`
}

type persistedAuthStore struct {
	User            *UserProfile `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Session owns the access/refresh tokens and authentication status. It is an
// explicit, injectable object rather than package-level state; only the
// client's refresh routine and the login/activation/logout flows write to it.
//
// Invariant: IsAuthenticated is true exactly when an access token is present
// in durable storage. Every mutation persists before returning so a reader
// following a write always observes the new state.
type Session struct {
	mu      sync.Mutex
	storage Storage

	accessToken  string
	refreshToken string
	user         *UserProfile
}

// NewSession loads any persisted session state from storage.
func NewSession(storage Storage) *Session {
	s := &Session{storage: storage}
	s.accessToken, _ = storage.Get(StorageKeyAccessToken)
	s.refreshToken, _ = storage.Get(StorageKeyRefreshToken)

	if raw, ok := storage.Get(StorageKeyAuthStore); ok {
		var persisted persistedAuthStore
		if err := json.Unmarshal([]byte(raw), &persisted); err == nil {
			s.user = persisted.User
		}
	}
	return s
}

// AccessToken returns the current access token, empty when unauthenticated.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// User returns the stored profile, nil when unauthenticated.
func (s *Session) User() *UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether an access token is held.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

// SetTokens stores a new token pair. An empty refresh token keeps the
// current one, which is what a non-rotating refresh response produces.
func (s *Session) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	_ = s.storage.Set(StorageKeyAccessToken, accessToken)
	if refreshToken != "" {
		s.refreshToken = refreshToken
		_ = s.storage.Set(StorageKeyRefreshToken, refreshToken)
	}
	s.persistAuthStore()
}

// SetUser stores the profile.
func (s *Session) SetUser(user *UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.persistAuthStore()
}

// Clear wipes tokens and profile from memory and durable storage.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	_ = s.storage.Delete(StorageKeyAccessToken)
	_ = s.storage.Delete(StorageKeyRefreshToken)
	s.persistAuthStore()
}

// persistAuthStore writes the serialized {user, isAuthenticated} blob.
// Callers must hold s.mu.
func (s *Session) persistAuthStore() {
	raw, err := json.Marshal(persistedAuthStore{
		User:            s.user,
		IsAuthenticated: s.accessToken != "",
	})
	if err != nil {
		return
	}
	_ = s.storage.Set(StorageKeyAuthStore, string(raw))
}

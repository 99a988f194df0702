package model

// User is the signed-in account as reported by the auth status endpoint.
type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsRealUser  bool   `json:"is_real_user"`
	HasTokens   bool   `json:"has_tokens"`
}

// AuthStatus is the client-side view of the current session. The server
// stays the source of truth; a 401 from any call overrides it.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user"`
	TokenValid    bool   `json:"token_valid"`
	NeedsRefresh  bool   `json:"needs_refresh"`
	Message       string `json:"message,omitempty"`
}

// RefreshNeeded reports whether the token is stale but recoverable.
func (s AuthStatus) RefreshNeeded() bool {
	return !s.TokenValid && s.NeedsRefresh
}

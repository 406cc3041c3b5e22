package model

import "time"

const RoleAdmin = "admin"

// Identity is the profile returned by the external identity provider.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Roles     []string  `json:"roles"`
	JoinedAt  time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) HasRole(role string) bool {
	return hasRole(u.Roles, role)
}

// AuthClaims are the verified identity attributes carried by a session token.
type AuthClaims struct {
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Roles     []string  `json:"roles,omitempty"`
	TokenID   string    `json:"jti,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c AuthClaims) HasRole(role string) bool {
	return hasRole(c.Roles, role)
}

type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
	Created   bool      `json:"created"`
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

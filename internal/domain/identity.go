package domain

import "time"

// Profile holds optional user details supplied by the login response.
type Profile struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Identity is the public shape of the authenticated session.
type Identity struct {
	Subject   string    `json:"subject"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	Profile
}

// Expired reports whether the identity is no longer valid at now.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// WithProfile overlays the non-empty fields of p onto the identity's profile.
// Subject, role and expiry are never touched.
func (i Identity) WithProfile(p Profile) Identity {
	if p.Username != "" {
		i.Username = p.Username
	}
	if p.Email != "" {
		i.Email = p.Email
	}
	if p.Phone != "" {
		i.Phone = p.Phone
	}
	if p.FirstName != "" {
		i.FirstName = p.FirstName
	}
	if p.LastName != "" {
		i.LastName = p.LastName
	}
	return i
}

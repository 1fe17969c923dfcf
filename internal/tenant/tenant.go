package tenant

import (
	"time"
)

// Tenant represents an isolated facility operator account. Users, roles
// and permissions are always scoped to exactly one tenant.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Branding  Branding  `json:"branding"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Branding holds display and contact metadata. Opaque to authorization.
type Branding struct {
	LogoURL      string `json:"logo_url,omitempty"`
	Website      string `json:"website,omitempty"`
	Instagram    string `json:"instagram,omitempty"`
	Facebook     string `json:"facebook,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

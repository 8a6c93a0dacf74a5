package models

// Role is the opaque role name supplied by the authentication gateway.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFieldAgent Role = "field_agent"
	RoleVerifier   Role = "verifier"
	RoleBuyer      Role = "buyer"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Mode selects which location fields an update may touch.
type Mode string

const (
	// ModeNormal is an owner edit: sets owner_id, never touches verification or remarks.
	ModeNormal Mode = "normal"
	// ModeVerification is a verifier edit: may set verification and remarks, never owner_id.
	ModeVerification Mode = "verification"
)

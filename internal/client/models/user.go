package models

// Role values returned by the backend in User.Role.
const (
	RoleRider = "rider"
	RoleUser  = "user"
)

// User is the identity record returned by sign-in and email verification.
type User struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Session groups the authenticated identity with its bearer tokens.
// There is at most one active session per client; a new sign-in replaces it.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

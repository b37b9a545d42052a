package entity

// User is one entry of the users.json array. Password is nil for accounts
// created through an external identity provider.
type User struct {
	Username        string  `json:"username"`
	Email           string  `json:"email,omitempty"`
	Name            string  `json:"name,omitempty"`
	Password        *string `json:"password"`
	CreatedAt       string  `json:"created_at"`
	Role            string  `json:"role"`
	IsAdmin         bool    `json:"is_admin"`
	HasSubscription bool    `json:"has_subscription"`
	AuthMethod      string  `json:"auth_method,omitempty"`
}

// UserView is the admin-facing listing row, tagged with the source the
// account came from: "env" (declared in the environment) or "file".
type UserView struct {
	Username        string  `json:"username"`
	Source          string  `json:"source"`
	IsAdmin         bool    `json:"is_admin"`
	HasSubscription bool    `json:"has_subscription"`
	CreatedAt       *string `json:"created_at"`
}

package user

// IdentityProfile is what the identity provider reports about an account.
type IdentityProfile struct {
	ClerkID  string
	Email    string
	Name     string
	Username string
}

type UpdateUsernameRequest struct {
	NewUsername string `json:"newUsername"`
}

type UpdateUsernameResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

type EmailByUsernameRequest struct {
	Username string `json:"username"`
}

type EmailByUsernameResponse struct {
	Email string `json:"email"`
}

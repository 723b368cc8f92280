package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Summary is the public view of another user: no email, no identity-provider id.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (u *User) Summary() *Summary {
	return &Summary{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
	}
}

// CanonicalID returns id in the lowercase hyphenated form the stores use.
// ok is false when id is not a UUID.
func CanonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// SameID reports whether a and b name the same user regardless of case.
func SameID(a, b string) bool {
	ca, okA := CanonicalID(a)
	cb, okB := CanonicalID(b)
	if !okA || !okB {
		return a == b
	}
	return ca == cb
}

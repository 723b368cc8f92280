package user

import (
	"encoding/json"
	"strings"
)

type ClerkWebhookEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	Username              string              `json:"username"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

// PrimaryEmail is the address marked primary, else the first one listed.
func (d *ClerkUserData) PrimaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (d *ClerkUserData) Profile() *IdentityProfile {
	return &IdentityProfile{
		ClerkID:  d.ID,
		Email:    d.PrimaryEmail(),
		Name:     strings.TrimSpace(d.FirstName + " " + d.LastName),
		Username: d.Username,
	}
}

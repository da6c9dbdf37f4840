package user

import (
	"fmt"
	"time"

	"github.com/bnobela/globetalk-api/internal/domain/shared"
)

// UserID represents a stable principal identifier
type UserID shared.ID

// String returns string representation
func (id UserID) String() string {
	return string(id)
}

// IsEmpty checks if the id is empty
func (id UserID) IsEmpty() bool {
	return string(id) == ""
}

// Profile is a principal's schemaless profile document. Registry fields
// (email, displayName, createdAt) and caller-supplied profile fields live in
// the same document; username is set only by a successful pool claim.
type Profile map[string]interface{}

// Username returns the claimed username, or "" when none is claimed yet
func (p Profile) Username() string {
	if p == nil {
		return ""
	}
	name, _ := p["username"].(string)
	return name
}

// NewUser carries the fields required to create a registry entry
type NewUser struct {
	ID          UserID `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Validate checks the required registry fields
func (u NewUser) Validate() error {
	if u.ID.IsEmpty() || u.Email == "" {
		return shared.ErrInvalidInput("Missing required fields")
	}
	return nil
}

// registryFields builds the document fragment written on creation
func (u NewUser) registryFields(createdAt time.Time) Profile {
	fields := Profile{
		"email":     u.Email,
		"createdAt": createdAt.UTC().Format(time.RFC3339),
	}
	if u.DisplayName != "" {
		fields["displayName"] = u.DisplayName
	}
	return fields
}

// Key returns the store key for a principal's document
func Key(id UserID) string {
	return fmt.Sprintf("user:%s", id.String())
}

package types

import (
	"encoding/json"
	"time"
)

// Roles recognised by the access rules.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// User represents an account in the system.
// It contains identity, role, and profile metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Fullname is the user's display name.
	Fullname string `json:"fullname" db:"fullname"`

	// Email is the unique login address of the user.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// AvatarURL points at the uploaded avatar, if any.
	AvatarURL *string `json:"avatar_url" db:"avatar_url"`

	// Phone is an optional contact number.
	Phone *string `json:"phone" db:"phone"`

	// Role indicates the user's authorization level:
	// "user", "admin" or "superadmin".
	Role string `json:"role" db:"role"`

	// Position is the user's job title within the organisation.
	Position *string `json:"position" db:"position"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"-" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// OptionalString is a JSON string field that remembers whether it was
// present in the request body. An explicit null is Set with a nil Value.
type OptionalString struct {
	Set   bool
	Value *string
}

// SetString returns a present, non-null OptionalString.
func SetString(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// ProfileUpdate carries the sparse set of fields a user may change on
// their own account. Absent fields are left untouched; a null clears the
// nullable ones.
type ProfileUpdate struct {
	Fullname  OptionalString `json:"fullname"`
	AvatarURL OptionalString `json:"avatar_url"`
	Phone     OptionalString `json:"phone"`
	Position  OptionalString `json:"position"`
}

// Empty reports whether no field was supplied.
func (p ProfileUpdate) Empty() bool {
	return !p.Fullname.Set && !p.AvatarURL.Set && !p.Phone.Set && !p.Position.Set
}

// Apply copies every supplied field onto user.
func (p ProfileUpdate) Apply(user *User) {
	if p.Fullname.Set && p.Fullname.Value != nil {
		user.Fullname = *p.Fullname.Value
	}
	if p.AvatarURL.Set {
		user.AvatarURL = p.AvatarURL.Value
	}
	if p.Phone.Set {
		user.Phone = p.Phone.Value
	}
	if p.Position.Set {
		user.Position = p.Position.Value
	}
}

// RoleUpdate is the admin-only change of role and/or position.
type RoleUpdate struct {
	Role     *string `json:"role"`
	Position *string `json:"position"`
}

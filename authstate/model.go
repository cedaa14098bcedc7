package authstate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Role represents the closed set of account roles recognized by the
// VolunteerHub backend. The zero value is [RoleUnset], used for accounts
// whose role has not been assigned yet (e.g. mid-registration).
type Role uint8

const (
	RoleUnset Role = iota
	RoleVolunteer
	RoleNGO
	RoleAdmin

	roleCount
)

func (r Role) String() string {
	switch r {
	case RoleVolunteer:
		return "volunteer"
	case RoleNGO:
		return "ngo"
	case RoleAdmin:
		return "admin"
	default:
		return ""
	}
}

// Valid reports whether r is a member of the closed enumeration,
// RoleUnset included.
func (r Role) Valid() bool {
	return r < roleCount
}

// ParseRole maps a wire-format role string onto the [Role] enumeration.
// Empty input yields [RoleUnset]; anything else unknown is an error.
func ParseRole(s string) (Role, error) {
	switch s {
	case "":
		return RoleUnset, nil
	case "volunteer":
		return RoleVolunteer, nil
	case "ngo":
		return RoleNGO, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleUnset, fmt.Errorf("unknown role %q", s)
	}
}

// MarshalJSON encodes the role as its wire string, or null when unset.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleUnset {
		return []byte("null"), nil
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts the wire string, "" or null. The backend has been
// observed emitting both null and a missing field for unassigned roles.
func (r *Role) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*r = RoleUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is the authenticated account record carried alongside the access
// token in every auth response and in the persisted client state.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`

	AvatarURL string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// UserPatch carries a partial profile update. Nil fields are left
// untouched by [Store.UpdateUser].
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	AvatarURL *string `json:"avatar,omitempty"`
}

// State is the client-session auth record: the current bearer token and the
// account it belongs to. IsAuthenticated is derived — it is true exactly when
// both AccessToken and User are set, and the store's mutators are the only
// writers, so no reader can observe it torn from the other two fields.
type State struct {
	AccessToken     string
	User            *User
	IsAuthenticated bool

	// UpdatedAt is the unix time of the last mutation, carried through
	// the persisted snapshot.
	UpdatedAt int64
}

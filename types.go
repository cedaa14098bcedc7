package hubauth

import (
	"github.com/volunteerhub/hubauth/authstate"
)

// Role represents the closed set of account roles recognized by the
// VolunteerHub backend. The zero value is [RoleUnset], used for accounts
// whose role has not been assigned yet (e.g. mid-registration).
//
//	Docs: docs/guard.md
type Role = authstate.Role

const (
	// RoleUnset is an exported constant or variable used by the auth client.
	RoleUnset = authstate.RoleUnset
	// RoleVolunteer is an exported constant or variable used by the auth client.
	RoleVolunteer = authstate.RoleVolunteer
	// RoleNGO is an exported constant or variable used by the auth client.
	RoleNGO = authstate.RoleNGO
	// RoleAdmin is an exported constant or variable used by the auth client.
	RoleAdmin = authstate.RoleAdmin
)

// ParseRole maps a wire-format role string onto the [Role] enumeration.
// Empty input yields [RoleUnset]; anything else unknown is an error.
func ParseRole(s string) (Role, error) {
	return authstate.ParseRole(s)
}

// User is the authenticated account record carried alongside the access
// token in every auth response and in the persisted client state.
type User = authstate.User

// UserPatch carries a partial profile update. Nil fields are left untouched
// by [Client.UpdateProfile] and by the state store's UpdateUser.
type UserPatch = authstate.UserPatch

// AuthResponse is the common payload of login, registration, and refresh:
// a fresh bearer token plus the account it belongs to.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// LoginRequest defines a public type used by hubauth APIs.
//
// LoginRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterVolunteerRequest defines a public type used by hubauth APIs.
//
// RegisterVolunteerRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterVolunteerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone,omitempty"`
}

// RegisterNGORequest defines a public type used by hubauth APIs.
//
// RegisterNGORequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterNGORequest struct {
	OrganizationName   string `json:"organizationName"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	ConfirmPassword    string `json:"confirmPassword"`
	Phone              string `json:"phone,omitempty"`
	Website            string `json:"website,omitempty"`
	Description        string `json:"description,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
}

// Job is a single listing as returned by the jobs endpoints.
type Job struct {
	ID          string   `json:"id"`
	NGOID       string   `json:"ngoId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags,omitempty"`
	Remote      bool     `json:"remote"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// JobFilter narrows [Client.ListJobs]. Zero values mean "no constraint";
// Page is 1-based and defaults to the first page.
type JobFilter struct {
	Search   string
	Location string
	Tags     []string
	Remote   *bool
	Page     int
	PageSize int
}

// JobPage is one page of listings plus pagination metadata.
type JobPage struct {
	Jobs       []Job `json:"jobs"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int   `json:"totalCount"`
}

// CreateJobRequest defines a public type used by hubauth APIs.
//
// CreateJobRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CreateJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags,omitempty"`
	Remote      bool     `json:"remote"`
}

// ApplicationStatus is the lifecycle state of a job application.
type ApplicationStatus string

const (
	// ApplicationPending is an exported constant or variable used by the auth client.
	ApplicationPending ApplicationStatus = "pending"
	// ApplicationAccepted is an exported constant or variable used by the auth client.
	ApplicationAccepted ApplicationStatus = "accepted"
	// ApplicationRejected is an exported constant or variable used by the auth client.
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application record as returned by the applications endpoints.
type Application struct {
	ID        string            `json:"id"`
	JobID     string            `json:"jobId"`
	UserID    string            `json:"userId"`
	Message   string            `json:"message,omitempty"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt string            `json:"createdAt,omitempty"`
}

// ApplyRequest defines a public type used by hubauth APIs.
//
// ApplyRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ApplyRequest struct {
	Message string `json:"message,omitempty"`
}

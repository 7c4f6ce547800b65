package types

import "time"

// User roles. Role is immutable after account creation.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusLocked   = "locked"
)

// User represents an account in the system.
// It contains identity, credentials, role, lockout state, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Username is the unique login name chosen by the user (3-50 chars).
	Username string `json:"username" db:"username"`

	// Email is the user's email address. Optional, unique when present.
	Email string `json:"email,omitempty" db:"email"`

	// AvatarURL points at the user's avatar image, if uploaded.
	AvatarURL string `json:"avatar_url,omitempty" db:"avatar_url"`

	// Role indicates the user's authorization level within the system.
	// One of RoleStudent, RoleTeacher, RoleAdmin.
	Role string `json:"role" db:"role"`

	// Status is the account lifecycle state: active, inactive, or locked.
	Status string `json:"status" db:"status"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// LoginAttempts counts consecutive failed logins. Reset to zero on
	// every successful authentication.
	LoginAttempts int `json:"-" db:"login_attempts"`

	// LockedUntil bounds a transient lockout. A locked account whose
	// LockedUntil has elapsed is treated as active on the next attempt.
	LockedUntil *time.Time `json:"-" db:"locked_until"`

	// LastLogin is the timestamp of the most recent successful login.
	LastLogin *time.Time `json:"last_login,omitempty" db:"last_login"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// DeletedAt marks a soft-deleted account. Soft-deleted accounts are
	// invisible to every lookup.
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// Public returns the projection of the user safe to ship in API responses.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

// PublicUser is the response-side view of an account. It never carries
// the password hash or lockout counters.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// Role-specific profile identifiers, attached at login time.
	StudentID     string `json:"studentId,omitempty"`
	StudentNumber string `json:"studentNumber,omitempty"`
	TeacherID     string `json:"teacherId,omitempty"`
	TeacherNumber string `json:"teacherNumber,omitempty"`
	Name          string `json:"name,omitempty"`
}

// Identity is the request-scoped result of bearer-token verification,
// attached to the request context for downstream handlers.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

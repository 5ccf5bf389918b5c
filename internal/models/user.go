package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of portal roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole returns the role named by s (case-insensitive).
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Title returns the capitalised role name.
func (r Role) Title() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleTeacher:
		return "Teacher"
	case RoleAdmin:
		return "Admin"
	default:
		return ""
	}
}

// UserProfile is the cached identity of the logged-in user.
// Branch and Semester only carry meaning for students.
type UserProfile struct {
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
	Branch   string `json:"branch,omitempty"`
	Semester string `json:"semester,omitempty"`
}

// Normalized returns a copy with student-only fields cleared for other roles.
func (p UserProfile) Normalized() UserProfile {
	if p.Role != RoleStudent {
		p.Branch = ""
		p.Semester = ""
	}
	return p
}

// Session is the authenticated identity. Token and User are both set or both empty;
// use NewSession and NoSession rather than building one by hand.
type Session struct {
	Token string       `json:"token,omitempty"`
	User  *UserProfile `json:"user,omitempty"`
}

// NewSession returns an established session, or the absent session when either part is missing.
func NewSession(token string, user *UserProfile) Session {
	if token == "" || user == nil {
		return NoSession()
	}
	u := user.Normalized()
	return Session{Token: token, User: &u}
}

// NoSession returns the absent session.
func NoSession() Session {
	return Session{}
}

// Present reports whether the session is established.
func (s Session) Present() bool {
	return s.Token != "" && s.User != nil
}

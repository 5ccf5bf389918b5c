package views

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/findly/internal/models"
)

// NotAvailable fills profile fields with no value.
const NotAvailable = "N/A"

// ProfileView is the display projection of a session's profile.
type ProfileView struct {
	DisplayName string
	Initial     string
	RoleTitle   string
	Email       string
	// StudentFields is set for students; Branch and Semester are only shown then.
	StudentFields bool
	Branch        string
	Semester      string
}

// Profile projects session into the profile view. It never fails; missing values fall back to
// placeholders.
func Profile(session models.Session) ProfileView {
	var u models.UserProfile
	if session.User != nil {
		u = *session.User
	}
	v := ProfileView{
		DisplayName: orNA(u.Name),
		Initial:     "U",
		RoleTitle:   u.Role.Title(),
		Email:       orNA(u.Email),
	}
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(u.Name)); r != utf8.RuneError {
		v.Initial = string(unicode.ToUpper(r))
	}
	if v.RoleTitle == "" {
		v.RoleTitle = models.RoleStudent.Title()
	}
	if u.Role == models.RoleStudent {
		v.StudentFields = true
		v.Branch = orNA(u.Branch)
		v.Semester = orNA(u.Semester)
	}
	return v
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

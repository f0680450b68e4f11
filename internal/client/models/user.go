package models

// User is the profile returned by api/current_user/.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// Role names shown in the prompt.
func (u *User) Role() string {
	if u == nil {
		return ""
	}
	if u.IsStaff {
		return "admin"
	}
	return "tecnico"
}

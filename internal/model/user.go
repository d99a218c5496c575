package model

// User is an operator account allowed to sign in.
type User struct {
	Record
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// UserView is a User without credentials, safe to return to callers.
type UserView struct {
	Record
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// View strips the password hash.
func (u *User) View() UserView {
	return UserView{
		Record: u.Record,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

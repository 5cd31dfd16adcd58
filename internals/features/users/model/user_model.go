// file: internals/features/users/model/user_model.go
package model

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// UserModel is a staff account. Passwords are stored as bcrypt hashes.
type UserModel struct {
	Username string `gorm:"primaryKey;column:username" json:"username"`
	Password string `gorm:"not null;column:password" json:"-"`
	Role     string `gorm:"not null;default:staff;column:role" json:"role"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u UserModel) IsAdmin() bool {
	return u.Role == RoleAdmin
}
